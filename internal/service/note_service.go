package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notekeeper-be/internal/dto"
	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/pkg/metrics"
	"notekeeper-be/internal/pkg/validation"
	"notekeeper-be/internal/repository/specification"
	"notekeeper-be/internal/repository/unitofwork"
	"notekeeper-be/pkg/events"

	"github.com/google/uuid"
)

const noteServiceModule = "NoteService"

// INoteService is the note resource service. The caller identity is always an
// explicit argument and every lookup is scoped to it.
type INoteService interface {
	List(ctx context.Context, userId uuid.UUID) ([]*dto.NoteResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type noteService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  INoteEventPublisher
	metrics    *metrics.Manager
	logger     logger.ILogger
	now        func() time.Time
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisher INoteEventPublisher,
	metrics *metrics.Manager,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory: uowFactory,
		publisher:  publisher,
		metrics:    metrics,
		logger:     log,
		now:        time.Now,
	}
}

func (s *noteService) List(ctx context.Context, userId uuid.UUID) ([]*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.OwnedBy{OwnerID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		s.metrics.NoteOp(metrics.OpList, "error")
		return nil, fmt.Errorf("list notes: %w", err)
	}

	res := make([]*dto.NoteResponse, 0, len(notes))
	for _, n := range notes {
		res = append(res, toNoteResponse(n))
	}
	s.metrics.NoteOp(metrics.OpList, "ok")
	return res, nil
}

func (s *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		s.metrics.NoteOp(metrics.OpShow, outcome(err))
		return nil, err
	}
	s.metrics.NoteOp(metrics.OpShow, "ok")
	return toNoteResponse(note), nil
}

func (s *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	if err := validate(req); err != nil {
		s.metrics.NoteOp(metrics.OpCreate, outcome(err))
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	note := entity.Note{
		Id:       uuid.New(),
		Title:    req.Title,
		Body:     req.Body,
		Category: req.Category,
		OwnerId:  userId,
	}

	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		s.metrics.NoteOp(metrics.OpCreate, "error")
		return nil, fmt.Errorf("create note: %w", err)
	}

	s.metrics.NoteOp(metrics.OpCreate, "ok")
	s.publish(ctx, events.NoteCreated, &note)
	return toNoteResponse(&note), nil
}

func (s *noteService) Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		s.metrics.NoteOp(metrics.OpUpdate, "error")
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer uow.Rollback()

	note, err := s.findOwned(ctx, uow, userId, id, specification.ForUpdate{})
	if err != nil {
		s.metrics.NoteOp(metrics.OpUpdate, outcome(err))
		return nil, err
	}

	if err := validate(req); err != nil {
		s.metrics.NoteOp(metrics.OpUpdate, outcome(err))
		return nil, err
	}

	if req.IsEmpty() {
		s.metrics.NoteOp(metrics.OpUpdate, "ok")
		return toNoteResponse(note), nil
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Body != nil {
		note.Body = *req.Body
	}
	if req.Category != nil {
		note.Category = *req.Category
	}
	note.UpdatedAt = s.now()

	if _, err := uow.NoteRepository().Update(ctx, note); err != nil {
		s.metrics.NoteOp(metrics.OpUpdate, "error")
		return nil, fmt.Errorf("update note %s: %w", id, err)
	}
	if err := uow.Commit(); err != nil {
		s.metrics.NoteOp(metrics.OpUpdate, "error")
		return nil, fmt.Errorf("commit update %s: %w", id, err)
	}

	s.metrics.NoteOp(metrics.OpUpdate, "ok")
	s.publish(ctx, events.NoteUpdated, note)
	return toNoteResponse(note), nil
}

func (s *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		s.metrics.NoteOp(metrics.OpDelete, "error")
		return fmt.Errorf("begin delete: %w", err)
	}
	defer uow.Rollback()

	note, err := s.findOwned(ctx, uow, userId, id, specification.ForUpdate{})
	if err != nil {
		s.metrics.NoteOp(metrics.OpDelete, outcome(err))
		return err
	}

	if _, err := uow.NoteRepository().Delete(ctx,
		specification.ByID{ID: note.Id},
		specification.OwnedBy{OwnerID: userId},
	); err != nil {
		s.metrics.NoteOp(metrics.OpDelete, "error")
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	if err := uow.Commit(); err != nil {
		s.metrics.NoteOp(metrics.OpDelete, "error")
		return fmt.Errorf("commit delete %s: %w", id, err)
	}

	s.metrics.NoteOp(metrics.OpDelete, "ok")
	s.publish(ctx, events.NoteDeleted, note)
	return nil
}

func (s *noteService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID, extra ...specification.Specification) (*entity.Note, error) {
	specs := append([]specification.Specification{
		specification.ByID{ID: id},
		specification.OwnedBy{OwnerID: userId},
	}, extra...)
	note, err := uow.NoteRepository().FindOne(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("find note %s: %w", id, err)
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

// publish is best effort; the write has already succeeded.
func (s *noteService) publish(ctx context.Context, eventType string, note *entity.Note) {
	if s.publisher == nil {
		return
	}
	evt := events.NewNoteEvent(eventType, note.Id, note.OwnerId, note.Title, s.now())
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn(noteServiceModule, "Failed to publish note event", map[string]interface{}{
			"type":    eventType,
			"note_id": note.Id.String(),
			"error":   err,
		})
	}
}

func validate(req interface{}) error {
	fields, err := validation.Struct(req)
	if err != nil {
		return fmt.Errorf("validate request: %w", err)
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

func outcome(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, ErrNoteNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func toNoteResponse(n *entity.Note) *dto.NoteResponse {
	return &dto.NoteResponse{
		Id:        n.Id,
		Title:     n.Title,
		Body:      n.Body,
		Category:  n.Category,
		OwnerId:   n.OwnerId,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
