package rbac

// Default policy. Ownership and enrollment are checked separately per
// resource; this map only gates the operation class.
var RolePermissions = map[string][]string{
	"student": {
		"course:list",
		"course:enroll",
		"quiz:list",
		"quiz:take",
		"quiz:submit",
		"result:view-own",
		"file:view",
		"user:change_password",
	},
	"teacher": {
		"course:create",
		"course:list",
		"course:manage-own",
		"quiz:list",
		"quiz:manage-own",
		"result:view-course",
		"result:export",
		"file:view",
		"file:manage-own",
		"users:list-students",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}

// CanManageCourse is the ownership rule applied on every course, quiz,
// question and result mutation: admins always, teachers only on courses
// they own.
func CanManageCourse(role, username, ownerUsername string) bool {
	switch role {
	case "admin":
		return true
	case "teacher":
		return username != "" && username == ownerUsername
	default:
		return false
	}
}
