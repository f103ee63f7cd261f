package auth

import (
	"slices"

	"github.com/samber/lo"

	"github.com/bilgisen/khabar/internal/models"
)

// Operation names a guarded admin action.
type Operation string

const (
	OpProfile Operation = "profile"

	OpArticlesRead    Operation = "articles.read"
	OpArticlesWrite   Operation = "articles.write"
	OpArticlesPublish Operation = "articles.publish"
	OpArticlesDelete  Operation = "articles.delete"

	OpCategoriesRead   Operation = "categories.read"
	OpCategoriesWrite  Operation = "categories.write"
	OpCategoriesDelete Operation = "categories.delete"

	OpBreakingRead   Operation = "breaking.read"
	OpBreakingWrite  Operation = "breaking.write"
	OpBreakingDelete Operation = "breaking.delete"

	OpVideosRead   Operation = "videos.read"
	OpVideosWrite  Operation = "videos.write"
	OpVideosDelete Operation = "videos.delete"

	OpStreamsRead   Operation = "streams.read"
	OpStreamsWrite  Operation = "streams.write"
	OpStreamsDelete Operation = "streams.delete"

	OpRssRead   Operation = "rss.read"
	OpRssWrite  Operation = "rss.write"
	OpRssSync   Operation = "rss.sync"
	OpRssImport Operation = "rss.import"

	OpAdsRead  Operation = "ads.read"
	OpAdsWrite Operation = "ads.write"

	OpUsersManage Operation = "users.manage"
	OpUpload      Operation = "upload"
)

var (
	everyone = models.AllRoles
	staff    = lo.Without(models.AllRoles, models.RoleViewer)
	writers  = []models.Role{models.RoleManager, models.RoleEditor, models.RoleLimitedEditor}
	editors  = []models.Role{models.RoleManager, models.RoleEditor}
	managers = []models.Role{models.RoleManager}
)

// Permissions is the complete route authorization table. Roles are flat:
// a role is allowed only if it is listed.
var Permissions = map[Operation][]models.Role{
	OpProfile: everyone,

	OpArticlesRead:    everyone,
	OpArticlesWrite:   writers,
	OpArticlesPublish: editors,
	OpArticlesDelete:  managers,

	OpCategoriesRead:   everyone,
	OpCategoriesWrite:  editors,
	OpCategoriesDelete: managers,

	OpBreakingRead:   everyone,
	OpBreakingWrite:  writers,
	OpBreakingDelete: editors,

	OpVideosRead:   everyone,
	OpVideosWrite:  {models.RoleManager, models.RoleEditor, models.RoleSubtitleEditor},
	OpVideosDelete: managers,

	OpStreamsRead:   everyone,
	OpStreamsWrite:  editors,
	OpStreamsDelete: managers,

	OpRssRead:   editors,
	OpRssWrite:  managers,
	OpRssSync:   editors,
	OpRssImport: editors,

	OpAdsRead:  editors,
	OpAdsWrite: managers,

	OpUsersManage: managers,
	OpUpload:      staff,
}

// RolesFor returns a copy of the roles allowed to perform op. Unknown
// operations allow nobody.
func RolesFor(op Operation) []models.Role {
	return slices.Clone(Permissions[op])
}

func Allowed(op Operation, role models.Role) bool {
	return lo.Contains(Permissions[op], role)
}

// Operations lists every guarded operation in a stable order.
func Operations() []Operation {
	ops := lo.Keys(Permissions)
	slices.Sort(ops)
	return ops
}
