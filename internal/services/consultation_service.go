package services

import (
	"context"
	"time"

	"github.com/skinior/skinior-api/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const (
	tracerName                  = "github.com/skinior/skinior-api/internal/services"
	listRecommendationsPerEntry = 5
)

type ConsultationSessionReader interface {
	ListByFilter(ctx context.Context, filter models.SessionFilter) ([]models.AnalysisSession, error)
	CountByFilter(ctx context.Context, filter models.SessionFilter) (int64, error)
	FindOwned(ctx context.Context, userID string, sessionID string) (models.AnalysisSession, bool, error)
}

type ConsultationAnalysisReader interface {
	LatestBySessionIDs(ctx context.Context, sessionIDs []string) (map[string]models.AnalysisData, error)
}

type ConsultationRecommendationReader interface {
	ListBySessionIDs(ctx context.Context, sessionIDs []string, perSession int) (map[string][]models.ProductRecommendation, error)
}

type ConsultationPagination struct {
	Total   int64   `json:"total"`
	Limit   int     `json:"limit"`
	Cursor  *string `json:"cursor"`
	HasMore bool    `json:"hasMore"`
}

type ConsultationPage struct {
	Consultations []Consultation         `json:"consultations"`
	Pagination    ConsultationPagination `json:"pagination"`
}

type ConsultationService struct {
	sessions        ConsultationSessionReader
	analysis        ConsultationAnalysisReader
	recommendations ConsultationRecommendationReader
	now             func() time.Time
}

func NewConsultationService(sessions ConsultationSessionReader, analysis ConsultationAnalysisReader, recommendations ConsultationRecommendationReader) *ConsultationService {
	return &ConsultationService{
		sessions:        sessions,
		analysis:        analysis,
		recommendations: recommendations,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// List validates the query before touching storage. The page query asks for one
// extra row to learn whether another page exists; the count ignores the cursor.
func (service *ConsultationService) List(ctx context.Context, userID string, query ConsultationQuery) (ConsultationPage, error) {
	filter, err := BuildSessionFilter(userID, query)
	if err != nil {
		return ConsultationPage{}, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "consultations.list")
	defer span.End()
	span.SetAttributes(
		attribute.Int("consultations.limit", filter.Limit),
		attribute.String("consultations.status", filter.Status),
		attribute.Bool("consultations.cursor", filter.CursorID != ""),
	)

	pageFilter := filter
	pageFilter.Limit = filter.Limit + 1

	var (
		sessions []models.AnalysisSession
		total    int64
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		rows, err := service.sessions.ListByFilter(groupCtx, pageFilter)
		if err != nil {
			return err
		}
		sessions = rows
		return nil
	})
	group.Go(func() error {
		count, err := service.sessions.CountByFilter(groupCtx, filter)
		if err != nil {
			return err
		}
		total = count
		return nil
	})
	if err := group.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list consultations")
		return ConsultationPage{}, err
	}

	hasMore := len(sessions) > filter.Limit
	if hasMore {
		sessions = sessions[:filter.Limit]
	}

	consultations, err := service.mapSessions(ctx, sessions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load consultation children")
		return ConsultationPage{}, err
	}

	page := ConsultationPage{
		Consultations: consultations,
		Pagination: ConsultationPagination{
			Total:   total,
			Limit:   filter.Limit,
			HasMore: hasMore,
		},
	}
	if len(sessions) > 0 {
		cursor := sessions[len(sessions)-1].ID
		page.Pagination.Cursor = &cursor
	}
	span.SetAttributes(attribute.Int("consultations.returned", len(consultations)))
	return page, nil
}

func (service *ConsultationService) Get(ctx context.Context, userID string, consultationID string) (ConsultationDetail, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "consultations.get")
	defer span.End()

	session, found, err := service.sessions.FindOwned(ctx, userID, consultationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find consultation")
		return ConsultationDetail{}, err
	}
	if !found {
		return ConsultationDetail{}, ErrConsultationNotFound
	}

	ids := []string{session.ID}
	latest, recommendations, err := service.loadChildren(ctx, ids, 0)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load consultation children")
		return ConsultationDetail{}, err
	}

	return MapConsultationDetail(session, latestFor(latest, session.ID), recommendations[session.ID], service.now()), nil
}

func (service *ConsultationService) mapSessions(ctx context.Context, sessions []models.AnalysisSession) ([]Consultation, error) {
	consultations := make([]Consultation, 0, len(sessions))
	if len(sessions) == 0 {
		return consultations, nil
	}

	ids := make([]string, 0, len(sessions))
	for _, session := range sessions {
		ids = append(ids, session.ID)
	}

	latest, recommendations, err := service.loadChildren(ctx, ids, listRecommendationsPerEntry)
	if err != nil {
		return nil, err
	}

	now := service.now()
	for _, session := range sessions {
		consultations = append(consultations, MapConsultation(session, latestFor(latest, session.ID), recommendations[session.ID], now))
	}
	return consultations, nil
}

func (service *ConsultationService) loadChildren(ctx context.Context, ids []string, perSession int) (map[string]models.AnalysisData, map[string][]models.ProductRecommendation, error) {
	var (
		latest          map[string]models.AnalysisData
		recommendations map[string][]models.ProductRecommendation
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		rows, err := service.analysis.LatestBySessionIDs(groupCtx, ids)
		latest = rows
		return err
	})
	group.Go(func() error {
		rows, err := service.recommendations.ListBySessionIDs(groupCtx, ids, perSession)
		recommendations = rows
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	return latest, recommendations, nil
}

func latestFor(latest map[string]models.AnalysisData, sessionID string) *models.AnalysisData {
	entry, ok := latest[sessionID]
	if !ok {
		return nil
	}
	return &entry
}

// ListRange maps every session created inside the optional range, newest first,
// with all of their recommendations. maxRows <= 0 means no cap.
func (service *ConsultationService) ListRange(ctx context.Context, userID string, from *time.Time, to *time.Time, maxRows int) ([]Consultation, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "consultations.list_range")
	defer span.End()

	sessions, err := service.sessions.ListByFilter(ctx, models.SessionFilter{
		UserID: userID,
		From:   from,
		To:     to,
		Limit:  maxRows,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list sessions for range")
		return nil, err
	}

	ids := make([]string, 0, len(sessions))
	for _, session := range sessions {
		ids = append(ids, session.ID)
	}
	if len(ids) == 0 {
		return []Consultation{}, nil
	}
	latest, recommendations, err := service.loadChildren(ctx, ids, 0)
	if err != nil {
		return nil, err
	}

	now := service.now()
	consultations := make([]Consultation, 0, len(sessions))
	for _, session := range sessions {
		consultations = append(consultations, MapConsultation(session, latestFor(latest, session.ID), recommendations[session.ID], now))
	}
	return consultations, nil
}
