// Package access принимает решения о доступе по набору прав пользователя.
package access

// Имена прав, выдаваемых сервисом авторизации
const (
	PermCourseAdd       = "course:add"
	PermCourseInfoWrite = "course:info:write"
	PermCourseDel       = "course:del"
	PermCourseUserAdd   = "course:user:add"
	PermCourseUserDel   = "course:user:del"
	PermCourseUserList  = "course:userList"
	PermCourseTestList  = "course:testList"
	PermCourseTestAdd   = "course:test:add"
	PermCourseTestDel   = "course:test:del"
	PermCourseTestRead  = "course:test:read"
	PermCourseTestWrite = "course:test:write"

	PermTestQuestAdd    = "test:quest:add"
	PermTestQuestDel    = "test:quest:del"
	PermTestQuestUpdate = "test:quest:update"
	PermTestAnswerRead  = "test:answer:read"

	PermAnswerRead   = "answer:read"
	PermAnswerUpdate = "answer:update"
	PermAnswerDel    = "answer:del"

	PermQuestCreate   = "quest:create"
	PermQuestRead     = "quest:read"
	PermQuestUpdate   = "quest:update"
	PermQuestDel      = "quest:del"
	PermQuestListRead = "quest:list:read"

	PermUserDataRead = "user:data:read"
)

// Ownership задает проверку владения ресурсом, применяемую при отсутствии права
type Ownership int

const (
	// OwnershipNone - владение не проверяется
	OwnershipNone Ownership = iota
	// OwnershipSelf - доступ есть у пользователя, совпадающего с владельцем ресурса
	OwnershipSelf
)

// Identity - пользователь, извлеченный из токена
type Identity struct {
	UserID      string
	Blocked     bool
	Permissions map[string]struct{}
}

// NewIdentity создает Identity из списка прав
func NewIdentity(userID string, blocked bool, permissions []string) Identity {
	set := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		set[p] = struct{}{}
	}
	return Identity{UserID: userID, Blocked: blocked, Permissions: set}
}

// Has проверяет наличие права
func (id Identity) Has(permission string) bool {
	if permission == "" {
		return false
	}
	_, ok := id.Permissions[permission]
	return ok
}

// Rule описывает доступ к операции
type Rule struct {
	Permission     string
	DefaultAllowed bool
	Ownership      Ownership
}

// Check решает, разрешена ли операция пользователю над ресурсом владельца owner.
// Заблокированному пользователю запрещено все. Право из токена разрешает всегда.
// Затем проверяется владение, если оно задано, и в последнюю очередь DefaultAllowed.
func Check(id Identity, rule Rule, owner string) bool {
	if id.Blocked {
		return false
	}
	if id.Has(rule.Permission) {
		return true
	}
	if rule.Ownership != OwnershipNone {
		return ownershipHolds(rule.Ownership, id, owner)
	}
	return rule.DefaultAllowed
}

func ownershipHolds(o Ownership, id Identity, owner string) bool {
	switch o {
	case OwnershipSelf:
		return id.UserID != "" && id.UserID == owner
	default:
		return false
	}
}

// OwnerOr - частый случай: владелец ресурса или держатель права
func OwnerOr(permission string) Rule {
	return Rule{Permission: permission, Ownership: OwnershipSelf}
}

// Require - доступ только по праву
func Require(permission string) Rule {
	return Rule{Permission: permission}
}
