package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memoria/internal/models/db_models"
	"memoria/internal/models/request_models"
	"memoria/internal/models/response_models"
	"memoria/internal/repositories"
	"memoria/pkg/utils"
)

const (
	DefaultContributionPage = 3
	maxAuthorNameLength     = 100
	maxTitleLength          = 200
)

// ContributionService moderates tributes and stories. The memorial owner is
// the sole moderator; contributions by anyone else wait in pending until the
// owner approves or rejects them.
type ContributionService interface {
	Submit(ctx context.Context, memorialID, actor uuid.UUID, kind db_models.ContributionKind, req request_models.ContributionRequest) (*response_models.ContributionResponse, error)
	Approve(ctx context.Context, id, actor uuid.UUID, kind db_models.ContributionKind) (*response_models.ContributionResponse, error)
	Reject(ctx context.Context, id, actor uuid.UUID, kind db_models.ContributionKind) (*response_models.ContributionResponse, error)
	List(ctx context.Context, memorialID uuid.UUID, kind db_models.ContributionKind, viewer uuid.UUID, offset, limit int) (*response_models.ContributionPage, error)
	Edit(ctx context.Context, id, actor uuid.UUID, kind db_models.ContributionKind, req request_models.ContributionRequest) (*response_models.ContributionResponse, error)
	Delete(ctx context.Context, id, actor uuid.UUID, kind db_models.ContributionKind) error
}

type contributionService struct {
	contributionRepo repositories.ContributionRepository
	memorialRepo     repositories.MemorialRepository
	accountRepo      repositories.AccountRepository
	mailer           IMailService
	siteURL          string
	log              *zap.Logger
}

func NewContributionService(
	contributionRepo repositories.ContributionRepository,
	memorialRepo repositories.MemorialRepository,
	accountRepo repositories.AccountRepository,
	mailer IMailService,
	siteURL string,
	log *zap.Logger,
) ContributionService {
	return &contributionService{
		contributionRepo: contributionRepo,
		memorialRepo:     memorialRepo,
		accountRepo:      accountRepo,
		mailer:           mailer,
		siteURL:          strings.TrimRight(siteURL, "/"),
		log:              log,
	}
}

type contributionInput struct {
	authorName string
	title      string
	content    string
}

func validateContribution(kind db_models.ContributionKind, req request_models.ContributionRequest) (contributionInput, error) {
	in := contributionInput{
		authorName: strings.TrimSpace(req.AuthorName),
		title:      strings.TrimSpace(req.Title),
		content:    strings.TrimSpace(req.Content),
	}

	if in.authorName == "" {
		return in, utils.NewValidationError("author_name", "Name is required")
	}
	if len([]rune(in.authorName)) > maxAuthorNameLength {
		return in, utils.NewValidationError("author_name", "Name is too long")
	}
	if kind == db_models.KindStory {
		if in.title == "" {
			return in, utils.NewValidationError("title", "Title is required")
		}
		if len([]rune(in.title)) > maxTitleLength {
			return in, utils.NewValidationError("title", "Title is too long")
		}
	} else {
		in.title = ""
	}
	if in.content == "" {
		return in, utils.NewValidationError("content", "Content is required")
	}
	if len([]rune(in.content)) > kind.MaxContentLength() {
		return in, utils.NewValidationError("content", fmt.Sprintf("Content is too long (max %d characters)", kind.MaxContentLength()))
	}
	return in, nil
}

func toContributionResponse(c *db_models.Contribution, canEdit bool) response_models.ContributionResponse {
	return response_models.ContributionResponse{
		ID:           c.ID.String(),
		Kind:         string(c.Kind),
		AuthorName:   c.AuthorName,
		Title:        c.Title,
		Content:      c.Content,
		Status:       string(c.Status),
		CreatedAt:    c.CreatedAt,
		CreatedLabel: utils.FormatShortDate(c.CreatedAt),
		CanEdit:      canEdit,
	}
}

func canEdit(c *db_models.Contribution, memorial *db_models.Memorial, actor uuid.UUID) bool {
	return memorial.IsOwnedBy(actor) || c.IsAuthoredBy(actor)
}

func (s *contributionService) Submit(ctx context.Context, memorialID, actor uuid.UUID, kind db_models.ContributionKind, req request_models.ContributionRequest) (*response_models.ContributionResponse, error) {
	if actor == uuid.Nil {
		return nil, utils.ErrUnauthenticated
	}
	if !kind.Valid() {
		return nil, utils.ErrInvalidInput
	}

	memorial, err := s.memorialRepo.FindById(ctx, memorialID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if memorial == nil {
		return nil, utils.ErrMemorialNotFound
	}

	in, err := validateContribution(kind, req)
	if err != nil {
		return nil, err
	}

	status := db_models.StatusPending
	if memorial.IsOwnedBy(actor) {
		status = db_models.StatusApproved
	}

	author := actor
	contribution := &db_models.Contribution{
		MemorialID: memorialID,
		Kind:       kind,
		AuthorID:   &author,
		AuthorName: in.authorName,
		Title:      in.title,
		Content:    in.content,
		Status:     status,
	}
	if status == db_models.StatusApproved {
		now := utils.NowUnixSeconds()
		contribution.ModeratedAt = &now
	}

	if err := s.contributionRepo.Create(ctx, contribution); err != nil {
		return nil, utils.ErrDatabaseError
	}

	if status == db_models.StatusPending {
		s.notifyOwner(ctx, memorial, contribution)
	}

	resp := toContributionResponse(contribution, true)
	return &resp, nil
}

// notifyOwner tells the owner that something waits for approval. Delivery
// failures are logged only.
func (s *contributionService) notifyOwner(ctx context.Context, memorial *db_models.Memorial, c *db_models.Contribution) {
	log := s.log.With(
		zap.String("memorial_id", memorial.ID.String()),
		zap.String("contribution_id", c.ID.String()))

	owner, err := s.accountRepo.FindById(ctx, memorial.OwnerID.String())
	if err != nil || owner == nil {
		log.Warn("owner lookup for moderation notice failed", zap.Error(err))
		return
	}

	subject := fmt.Sprintf("A new %s is awaiting approval", c.Kind)
	body := fmt.Sprintf("%s left a %s on the memorial for %s. It will stay hidden until you approve it.",
		c.AuthorName, c.Kind, memorial.FullName())
	link := fmt.Sprintf("%s/memorials/%s", s.siteURL, memorial.ID)

	if err := s.mailer.SendMailToNotifyUser(owner.Email, subject, body, "Review now", link); err != nil {
		log.Warn("moderation notice not sent", zap.Error(err))
	}
}

func (s *contributionService) load(ctx context.Context, id uuid.UUID, kind db_models.ContributionKind) (*db_models.Contribution, error) {
	c, err := s.contributionRepo.FindById(ctx, id, kind)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if c == nil || c.Memorial == nil {
		return nil, utils.ErrContributionMissing
	}
	return c, nil
}

func (s *contributionService) moderate(ctx context.Context, id, actor uuid.UUID, kind db_models.ContributionKind, to db_models.ModerationStatus) (*response_models.ContributionResponse, error) {
	c, err := s.load(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	if !c.Memorial.IsOwnedBy(actor) {
		return nil, utils.ErrPermissionDenied
	}
	if c.Status != db_models.StatusPending {
		return nil, utils.ErrInvalidTransition
	}

	now := utils.NowUnixSeconds()
	c.Status = to
	c.ModeratedAt = &now
	if err := s.contributionRepo.Update(ctx, c); err != nil {
		return nil, utils.ErrDatabaseError
	}

	resp := toContributionResponse(c, true)
	return &resp, nil
}

func (s *contributionService) Approve(ctx context.Context, id, actor uuid.UUID, kind db_models.ContributionKind) (*response_models.ContributionResponse, error) {
	return s.moderate(ctx, id, actor, kind, db_models.StatusApproved)
}

func (s *contributionService) Reject(ctx context.Context, id, actor uuid.UUID, kind db_models.ContributionKind) (*response_models.ContributionResponse, error) {
	return s.moderate(ctx, id, actor, kind, db_models.StatusRejected)
}

func (s *contributionService) List(ctx context.Context, memorialID uuid.UUID, kind db_models.ContributionKind, viewer uuid.UUID, offset, limit int) (*response_models.ContributionPage, error) {
	memorial, err := s.memorialRepo.FindById(ctx, memorialID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if memorial == nil {
		return nil, utils.ErrMemorialNotFound
	}

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultContributionPage
	}
	isOwner := memorial.IsOwnedBy(viewer)

	items, total, err := s.contributionRepo.List(ctx, repositories.ContributionQuery{
		MemorialID:   memorialID,
		Kind:         kind,
		ApprovedOnly: !isOwner,
		Offset:       offset,
		Limit:        limit,
	})
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	page := &response_models.ContributionPage{
		Items:   make([]response_models.ContributionResponse, 0, len(items)),
		Offset:  offset,
		Limit:   limit,
		Total:   total,
		HasMore: int64(offset+len(items)) < total,
		IsOwner: isOwner,
	}
	for i := range items {
		page.Items = append(page.Items, toContributionResponse(&items[i], canEdit(&items[i], memorial, viewer)))
	}
	return page, nil
}

// Edit changes the text of a contribution. Its moderation status is kept.
func (s *contributionService) Edit(ctx context.Context, id, actor uuid.UUID, kind db_models.ContributionKind, req request_models.ContributionRequest) (*response_models.ContributionResponse, error) {
	c, err := s.load(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	if !canEdit(c, c.Memorial, actor) {
		return nil, utils.ErrPermissionDenied
	}

	in, err := validateContribution(kind, req)
	if err != nil {
		return nil, err
	}
	c.AuthorName = in.authorName
	c.Title = in.title
	c.Content = in.content

	if err := s.contributionRepo.Update(ctx, c); err != nil {
		return nil, utils.ErrDatabaseError
	}
	resp := toContributionResponse(c, true)
	return &resp, nil
}

// Delete lets the owner remove anything, including rejected items. Authors
// may remove their own contribution unless the owner rejected it.
func (s *contributionService) Delete(ctx context.Context, id, actor uuid.UUID, kind db_models.ContributionKind) error {
	c, err := s.load(ctx, id, kind)
	if err != nil {
		return err
	}

	allowed := c.Memorial.IsOwnedBy(actor) ||
		(c.IsAuthoredBy(actor) && c.Status != db_models.StatusRejected)
	if !allowed {
		return utils.ErrPermissionDenied
	}

	if err := s.contributionRepo.Delete(ctx, c.ID); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}
