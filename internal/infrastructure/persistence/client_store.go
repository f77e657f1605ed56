package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/attractify/onboarding/internal/domain/client"
	"github.com/attractify/onboarding/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormClientStore implements client.Store over the hosted relational schema.
// Each mutation runs in one transaction; writes are last-write-wins.
type GormClientStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormClientStore creates a new GormClientStore
func NewGormClientStore(db *gorm.DB) *GormClientStore {
	return &GormClientStore{db: db, now: time.Now}
}

// WithClock returns a copy of the store using the given time source.
func (s *GormClientStore) WithClock(now func() time.Time) *GormClientStore {
	return &GormClientStore{db: s.db, now: now}
}

func (s *GormClientStore) stamp() time.Time {
	return s.now().UTC()
}

// GetClients returns every client newest first, with owned records joined in.
func (s *GormClientStore) GetClients(ctx context.Context) ([]client.Client, error) {
	var rows []models.ClientModel
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []client.Client{}, nil
	}

	clients := make([]client.Client, len(rows))
	ids := make([]string, len(rows))
	for i := range rows {
		clients[i] = *rows[i].ToDomain()
		ids[i] = rows[i].ID
	}
	if err := attachChildren(s.db.WithContext(ctx), clients, ids); err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *GormClientStore) GetClient(ctx context.Context, id string) (*client.Client, error) {
	return loadClient(s.db.WithContext(ctx), id)
}

func (s *GormClientStore) AddClient(ctx context.Context, fields client.Fields) (*client.Client, error) {
	c := client.NewClient(uuid.New().String(), fields, s.stamp())
	if err := s.db.WithContext(ctx).Create(models.ClientModelFromDomain(c)).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GormClientStore) UpdateClient(ctx context.Context, id string, patch client.Patch) (*client.Client, error) {
	var out *client.Client
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := findClientRow(tx, id)
		if err != nil {
			return err
		}
		c := row.ToDomain()
		c.Apply(patch, s.stamp())
		if err := tx.Save(models.ClientModelFromDomain(c)).Error; err != nil {
			return err
		}
		out, err = loadClient(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteClient removes the client and its child rows. An absent id returns
// ErrClientNotFound. Activity rows are kept.
func (s *GormClientStore) DeleteClient(ctx context.Context, id string) error {
	if !isUUID(id) {
		return client.ErrClientNotFound
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{
			&models.OnboardingStepModel{},
			&models.TimelineItemModel{},
			&models.RecordingSessionModel{},
			&models.AnalyticsSetupModel{},
		} {
			if err := tx.Where("client_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		result := tx.Where("id = ?", id).Delete(&models.ClientModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return client.ErrClientNotFound
		}
		return nil
	})
}

func (s *GormClientStore) UpdateOnboardingStep(ctx context.Context, clientID string, stepID int, status client.StepStatus) (*client.Client, error) {
	var out *client.Client
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := loadClient(tx, clientID)
		if err != nil {
			return err
		}
		now := s.stamp()
		if err := c.SetStepStatus(stepID, status, now); err != nil {
			return err
		}
		if err := upsertSteps(tx, c.ID, c.OnboardingSteps, now); err != nil {
			return err
		}
		if err := touchClient(tx, c.ID, now); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormClientStore) InitializeOnboardingSteps(ctx context.Context, clientID string) (*client.Client, error) {
	var out *client.Client
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := loadClient(tx, clientID)
		if err != nil {
			return err
		}
		if c.EnsureOnboardingSteps() {
			now := s.stamp()
			if err := upsertSteps(tx, c.ID, c.OnboardingSteps, now); err != nil {
				return err
			}
			if err := touchClient(tx, c.ID, now); err != nil {
				return err
			}
			c.Touch(now)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormClientStore) InitializeTimeline(ctx context.Context, clientID string) (*client.Client, error) {
	var out *client.Client
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := loadClient(tx, clientID)
		if err != nil {
			return err
		}
		if c.EnsureTimeline() {
			now := s.stamp()
			if err := upsertTimeline(tx, c.ID, c.Timeline, now); err != nil {
				return err
			}
			if err := touchClient(tx, c.ID, now); err != nil {
				return err
			}
			c.Touch(now)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormClientStore) SaveTimeline(ctx context.Context, clientID string, months []client.TimelineMonth) (*client.Client, error) {
	var out *client.Client
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findClientRow(tx, clientID); err != nil {
			return err
		}
		now := s.stamp()
		if err := upsertTimeline(tx, clientID, months, now); err != nil {
			return err
		}
		if err := touchClient(tx, clientID, now); err != nil {
			return err
		}
		var err error
		out, err = loadClient(tx, clientID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormClientStore) AddRecordingSession(ctx context.Context, session client.RecordingSession) (*client.RecordingSession, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findClientRow(tx, session.ClientID); err != nil {
			return err
		}
		if session.ID == "" {
			session.ID = uuid.New().String()
		}
		return tx.Create(models.RecordingSessionModelFromDomain(session)).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *GormClientStore) UpdateRecordingSession(ctx context.Context, session client.RecordingSession) (*client.RecordingSession, error) {
	var out client.RecordingSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !isUUID(session.ID) || !isUUID(session.ClientID) {
			return client.ErrSessionNotFound
		}
		var row models.RecordingSessionModel
		if err := tx.Where("id = ? AND client_id = ?", session.ID, session.ClientID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return client.ErrSessionNotFound
			}
			return err
		}
		session.CreatedAt = row.CreatedAt.UTC()
		session.UpdatedAt = s.stamp()
		if err := tx.Save(models.RecordingSessionModelFromDomain(session)).Error; err != nil {
			return err
		}
		out = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GormClientStore) ListRecordingSessions(ctx context.Context, clientID string) ([]client.RecordingSession, error) {
	db := s.db.WithContext(ctx)
	if _, err := findClientRow(db, clientID); err != nil {
		return nil, err
	}
	var rows []models.RecordingSessionModel
	if err := db.Where("client_id = ?", clientID).Order("scheduled_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]client.RecordingSession, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// GetAnalyticsSetup returns (nil, nil) when the client has no setup row.
func (s *GormClientStore) GetAnalyticsSetup(ctx context.Context, clientID string) (*client.AnalyticsSetup, error) {
	db := s.db.WithContext(ctx)
	if _, err := findClientRow(db, clientID); err != nil {
		return nil, err
	}
	var row models.AnalyticsSetupModel
	if err := db.Where("client_id = ?", clientID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

func (s *GormClientStore) UpsertAnalyticsSetup(ctx context.Context, setup client.AnalyticsSetup) (*client.AnalyticsSetup, error) {
	now := s.stamp()
	setup.UpdatedAt = now
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findClientRow(tx, setup.ClientID); err != nil {
			return err
		}
		row := models.AnalyticsSetupModelFromDomain(uuid.New().String(), setup, now)
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "client_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"website_url", "measurement_id", "enhanced_measurement",
				"cross_domain_tracking", "ga4_steps", "gtm_steps", "updated_at",
			}),
		}).Create(row).Error
	})
	if err != nil {
		return nil, err
	}
	return setup.Clone(), nil
}

func (s *GormClientStore) AppendActivity(ctx context.Context, entry client.ActivityEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Create(models.ActivityLogModelFromDomain(entry)).Error
}

func (s *GormClientStore) RecentActivity(ctx context.Context, limit int) ([]client.ActivityEntry, error) {
	if limit <= 0 {
		limit = client.DefaultActivityLimit
	}
	var rows []models.ActivityLogModel
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]client.ActivityEntry, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// isUUID guards queries on uuid columns; postgres rejects other strings
// with an invalid input error rather than matching nothing.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func findClientRow(db *gorm.DB, id string) (*models.ClientModel, error) {
	if !isUUID(id) {
		return nil, client.ErrClientNotFound
	}
	var row models.ClientModel
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, client.ErrClientNotFound
		}
		return nil, err
	}
	return &row, nil
}

func loadClient(db *gorm.DB, id string) (*client.Client, error) {
	row, err := findClientRow(db, id)
	if err != nil {
		return nil, err
	}
	clients := []client.Client{*row.ToDomain()}
	if err := attachChildren(db, clients, []string{id}); err != nil {
		return nil, err
	}
	return &clients[0], nil
}

// attachChildren loads the child tables for ids in four queries and attaches
// the rows to the matching clients.
func attachChildren(db *gorm.DB, clients []client.Client, ids []string) error {
	byID := make(map[string]*client.Client, len(clients))
	for i := range clients {
		byID[clients[i].ID] = &clients[i]
	}

	var steps []models.OnboardingStepModel
	if err := db.Where("client_id IN ?", ids).Order("step_order ASC").Find(&steps).Error; err != nil {
		return err
	}
	for i := range steps {
		if c, ok := byID[steps[i].ClientID]; ok {
			c.OnboardingSteps = append(c.OnboardingSteps, steps[i].ToDomain())
		}
	}

	var months []models.TimelineItemModel
	if err := db.Where("client_id IN ?", ids).Order("month ASC").Find(&months).Error; err != nil {
		return err
	}
	for i := range months {
		if c, ok := byID[months[i].ClientID]; ok {
			c.Timeline = append(c.Timeline, months[i].ToDomain())
		}
	}

	var sessions []models.RecordingSessionModel
	if err := db.Where("client_id IN ?", ids).Order("scheduled_date ASC").Find(&sessions).Error; err != nil {
		return err
	}
	for i := range sessions {
		if c, ok := byID[sessions[i].ClientID]; ok {
			c.RecordingSessions = append(c.RecordingSessions, sessions[i].ToDomain())
		}
	}

	var setups []models.AnalyticsSetupModel
	if err := db.Where("client_id IN ?", ids).Find(&setups).Error; err != nil {
		return err
	}
	for i := range setups {
		if c, ok := byID[setups[i].ClientID]; ok {
			c.Analytics = setups[i].ToDomain()
		}
	}
	return nil
}

// upsertSteps writes every step keyed by (client_id, step_order).
func upsertSteps(tx *gorm.DB, clientID string, steps []client.OnboardingStep, now time.Time) error {
	if len(steps) == 0 {
		return nil
	}
	rows := make([]*models.OnboardingStepModel, len(steps))
	for i, step := range steps {
		rows[i] = models.OnboardingStepModelFromDomain(uuid.New().String(), clientID, step, now)
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}, {Name: "step_order"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "completed_at", "updated_at"}),
	}).Create(&rows).Error
}

// upsertTimeline writes every month keyed by (client_id, month).
func upsertTimeline(tx *gorm.DB, clientID string, months []client.TimelineMonth, now time.Time) error {
	if len(months) == 0 {
		return nil
	}
	rows := make([]*models.TimelineItemModel, len(months))
	for i, month := range months {
		rows[i] = models.TimelineItemModelFromDomain(uuid.New().String(), clientID, month, now)
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "status", "progress", "weeks", "updated_at"}),
	}).Create(&rows).Error
}

func touchClient(tx *gorm.DB, id string, now time.Time) error {
	return tx.Model(&models.ClientModel{}).Where("id = ?", id).Update("updated_at", now).Error
}

var _ client.Store = (*GormClientStore)(nil)
