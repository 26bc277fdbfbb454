package domain

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

type GroupMember struct {
	UserID      string
	DisplayName string
}

// GroupRecord — источник истины по составу группы в пределах процесса.
// CreatorUserID неизменен после создания; Members — множество по userId.
type GroupRecord struct {
	ConversationID string
	Name           string
	CreatorUserID  string
	Members        map[string]GroupMember
	CreatedAt      time.Time
}

func (g *GroupRecord) HasMember(userID string) bool {
	_, ok := g.Members[userID]
	return ok
}

// MemberList возвращает участников, отсортированных по userId
func (g *GroupRecord) MemberList() []GroupMember {
	members := lo.Values(g.Members)
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })
	return members
}

func (g *GroupRecord) Clone() *GroupRecord {
	cp := *g
	cp.Members = make(map[string]GroupMember, len(g.Members))
	for id, m := range g.Members {
		cp.Members[id] = m
	}
	return &cp
}
