package db_models

import "github.com/google/uuid"

type ContributionKind string

const (
	KindTribute ContributionKind = "tribute"
	KindStory   ContributionKind = "story"
)

func (k ContributionKind) Valid() bool {
	return k == KindTribute || k == KindStory
}

// MaxContentLength is the content ceiling for the kind.
func (k ContributionKind) MaxContentLength() int {
	if k == KindStory {
		return 5000
	}
	return 2000
}

type ModerationStatus string

const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)

func (s ModerationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Contribution is a tribute or story left on a memorial.
type Contribution struct {
	BaseModel
	MemorialID  uuid.UUID        `gorm:"type:uuid;index;not null" json:"memorial_id"`
	Kind        ContributionKind `gorm:"size:10;index;not null" json:"kind"`
	AuthorID    *uuid.UUID       `gorm:"type:uuid;index" json:"author_id,omitempty"`
	AuthorName  string           `gorm:"size:100;not null" json:"author_name"`
	Title       string           `gorm:"size:200" json:"title,omitempty"`
	Content     string           `gorm:"type:text;not null" json:"content"`
	Status      ModerationStatus `gorm:"size:10;index;not null" json:"status"`
	ModeratedAt *int64           `json:"moderated_at,omitempty"`
	Memorial    *Memorial        `gorm:"foreignKey:MemorialID" json:"-"`
}

func (c *Contribution) IsAuthoredBy(accountID uuid.UUID) bool {
	return c.AuthorID != nil && accountID != uuid.Nil && *c.AuthorID == accountID
}
