package priceconfig

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	internal "github.com/wedflix/command-center/internal"
	"github.com/wedflix/command-center/internal/docstore"
)

const defaultPageSize = 10

// Page is one cursor-paginated window of configurations, newest first.
// HasMore is a heuristic: a full page is assumed to have a successor,
// so the last exact-multiple page reports one page too many.
type Page struct {
	Configs     []PriceConfig `json:"configs"`
	HasMore     bool          `json:"hasMore"`
	FirstCursor string        `json:"firstCursor,omitempty"`
	LastCursor  string        `json:"lastCursor,omitempty"`
}

// Service manages pricing configurations.
type Service struct {
	configs docstore.Collection
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(store docstore.Store, logger *slog.Logger) *Service {
	return &Service{
		configs: store.Collection(Collection),
		logger:  logger,
		now:     time.Now,
	}
}

func pageQuery(pageSize int) docstore.Query {
	return docstore.Query{
		OrderBy:    "created",
		Descending: true,
		Limit:      pageSize,
	}
}

func toPage(docs []docstore.Document, pageSize int) Page {
	configs := make([]PriceConfig, 0, len(docs))
	for _, d := range docs {
		configs = append(configs, fromDocument(d))
	}
	p := Page{
		Configs: configs,
		HasMore: len(configs) == pageSize,
	}
	if len(configs) > 0 {
		p.FirstCursor = configs[0].ID
		p.LastCursor = configs[len(configs)-1].ID
	}
	return p
}

// FirstPage returns the newest configurations.
func (s *Service) FirstPage(ctx context.Context, pageSize int) (Page, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	docs, err := s.configs.Find(ctx, pageQuery(pageSize))
	if err != nil {
		return Page{}, err
	}
	return toPage(docs, pageSize), nil
}

// NextPage returns the window following the given cursor.
func (s *Service) NextPage(ctx context.Context, pageSize int, afterID string) (Page, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	q := pageQuery(pageSize)
	q.StartAfter = afterID
	docs, err := s.configs.Find(ctx, q)
	if err != nil {
		return Page{}, err
	}
	return toPage(docs, pageSize), nil
}

// PrevPage returns the window immediately preceding the given cursor.
func (s *Service) PrevPage(ctx context.Context, pageSize int, beforeID string) (Page, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	q := pageQuery(pageSize)
	q.EndBefore = beforeID
	docs, err := s.configs.Find(ctx, q)
	if err != nil {
		return Page{}, err
	}
	return toPage(docs, pageSize), nil
}

// GetByID returns one configuration.
func (s *Service) GetByID(ctx context.Context, id string) (PriceConfig, error) {
	doc, err := s.configs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return PriceConfig{}, internal.ErrPriceConfigNotFound
		}
		return PriceConfig{}, err
	}
	return fromDocument(doc), nil
}

// Create stores a new configuration stamped with the acting user.
func (s *Service) Create(ctx context.Context, cfg PriceConfig, actor internal.SessionUser) (PriceConfig, error) {
	if cfg.RegularPrice < 0 || cfg.PremiumPrice < 0 {
		return PriceConfig{}, internal.NewValidationError("prices must not be negative", internal.ErrCodeValidationFailed)
	}

	cfg.ID = uuid.New().String()
	cfg.Created = s.now()
	cfg.UserID = actor.UID
	cfg.UserEmail = actor.Email

	if err := s.configs.Set(ctx, cfg.ID, cfg.fields()); err != nil {
		return PriceConfig{}, err
	}
	s.logger.Info("price configuration created", "config_id", cfg.ID, "created_by", actor.Email)
	return cfg, nil
}

// Update merges price changes into an existing configuration.
func (s *Service) Update(ctx context.Context, id string, regular, premium float64) (PriceConfig, error) {
	if regular < 0 || premium < 0 {
		return PriceConfig{}, internal.NewValidationError("prices must not be negative", internal.ErrCodeValidationFailed)
	}

	err := s.configs.Update(ctx, id, map[string]any{
		"regularPrice": regular,
		"premiumPrice": premium,
	})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return PriceConfig{}, internal.ErrPriceConfigNotFound
		}
		return PriceConfig{}, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a configuration.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.configs.Delete(ctx, id)
}

// EnsureDefault seeds the default configuration when the collection is
// empty, so pricing screens never start blank.
func (s *Service) EnsureDefault(ctx context.Context) error {
	n, err := s.configs.Count(ctx, docstore.Query{})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	def := PriceConfig{
		ID:           uuid.New().String(),
		RegularPrice: DefaultRegularPrice,
		PremiumPrice: DefaultPremiumPrice,
		Created:      s.now(),
		UserID:       seedUserID,
		UserEmail:    seedUserEmail,
	}
	if err := s.configs.Set(ctx, def.ID, def.fields()); err != nil {
		return err
	}
	s.logger.Info("seeded default price configuration", "config_id", def.ID)
	return nil
}
