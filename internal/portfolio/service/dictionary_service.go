package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/repository"
	"go.uber.org/zap"
)

// DictionaryService is the catalog every mutation validates against. The core
// paths are read-only; type/item creation is admin plumbing plus the startup
// bootstrap.
type DictionaryService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewDictionaryService(repos *repository.Repositories, logger *zap.Logger) *DictionaryService {
	return &DictionaryService{repos: repos, logger: logger}
}

// ResolveType finds a dictionary type by its unique name.
func (s *DictionaryService) ResolveType(ctx context.Context, name string) (*entity.DictionaryType, error) {
	t, err := s.repos.Dictionary.FindTypeByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("dictionary type %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("resolve dictionary type %q: %w", name, err)
	}
	return t, nil
}

// ValidateItem confirms the item exists and belongs to the named type. An
// absent item and an item of the wrong type fail the same way: the reference
// is not usable for the field that carries it.
func (s *DictionaryService) ValidateItem(ctx context.Context, itemID uint, typeName string) (*entity.DictionaryItem, error) {
	expected, err := s.ResolveType(ctx, typeName)
	if err != nil {
		return nil, err
	}
	item, err := s.repos.Dictionary.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("item %d is not a valid %q value: %w", itemID, typeName, ErrInvalidReference)
		}
		return nil, fmt.Errorf("find dictionary item %d: %w", itemID, err)
	}
	if item.TypeID != expected.ID {
		return nil, fmt.Errorf("item %d is not a valid %q value: %w", itemID, typeName, ErrInvalidReference)
	}
	return item, nil
}

// ValidateStage resolves a stage reference and requires its probability. A
// missing item, a wrong-typed item and a stage without a probability weight
// are all unusable as a project stage.
func (s *DictionaryService) ValidateStage(ctx context.Context, stageID uint) (*entity.DictionaryItem, error) {
	expected, err := s.ResolveType(ctx, entity.DictTypeStage)
	if err != nil {
		return nil, err
	}
	item, err := s.repos.Dictionary.FindItemByID(ctx, stageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("stage %d: %w", stageID, ErrInvalidStage)
		}
		return nil, fmt.Errorf("find stage item %d: %w", stageID, err)
	}
	if item.TypeID != expected.ID || item.Probability == nil {
		return nil, fmt.Errorf("stage %d: %w", stageID, ErrInvalidStage)
	}
	return item, nil
}

func (s *DictionaryService) ListTypes(ctx context.Context) ([]entity.DictionaryType, error) {
	return s.repos.Dictionary.ListTypes(ctx)
}

func (s *DictionaryService) CreateType(ctx context.Context, name string) (*entity.DictionaryType, error) {
	t := &entity.DictionaryType{Name: name}
	if err := s.repos.Dictionary.CreateType(ctx, t); err != nil {
		return nil, fmt.Errorf("create dictionary type: %w", err)
	}
	return t, nil
}

func (s *DictionaryService) ListItems(ctx context.Context, typeID uint) ([]entity.DictionaryItem, error) {
	return s.repos.Dictionary.ListItems(ctx, typeID)
}

func (s *DictionaryService) CreateItem(ctx context.Context, typeID uint, value string, probability *float64) (*entity.DictionaryItem, error) {
	item := &entity.DictionaryItem{TypeID: typeID, Value: value, Probability: probability}
	if err := s.repos.Dictionary.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create dictionary item: %w", err)
	}
	return item, nil
}

// SeedItem is one entry of the dictionary seed file:
// {"stage": [{"value": "negotiation", "probability": 0.3}, ...], ...}
type SeedItem struct {
	Value       string   `json:"value"`
	Probability *float64 `json:"probability"`
}

// EnsureTypes creates every known dictionary type that does not exist yet.
func (s *DictionaryService) EnsureTypes(ctx context.Context) error {
	for _, name := range entity.DictTypeNames {
		_, err := s.repos.Dictionary.FindTypeByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("lookup dictionary type %q: %w", name, err)
		}
		if err := s.repos.Dictionary.CreateType(ctx, &entity.DictionaryType{Name: name}); err != nil {
			return fmt.Errorf("create dictionary type %q: %w", name, err)
		}
	}
	return nil
}

// LoadSeedFile loads reference values from a JSON seed, skipping items that
// already exist by (type, value). Safe to run on every start.
func (s *DictionaryService) LoadSeedFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read dictionary seed: %w", err)
	}
	var seed map[string][]SeedItem
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("parse dictionary seed: %w", err)
	}

	for _, name := range entity.DictTypeNames {
		items := seed[name]
		if len(items) == 0 {
			continue
		}
		dictType, err := s.ResolveType(ctx, name)
		if err != nil {
			return err
		}
		for _, it := range items {
			_, err := s.repos.Dictionary.FindItemByTypeAndValue(ctx, dictType.ID, it.Value)
			if err == nil {
				continue
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("lookup seed item %q/%q: %w", name, it.Value, err)
			}
			item := &entity.DictionaryItem{
				TypeID:      dictType.ID,
				Value:       it.Value,
				Probability: it.Probability,
			}
			if err := s.repos.Dictionary.CreateItem(ctx, item); err != nil {
				return fmt.Errorf("seed item %q/%q: %w", name, it.Value, err)
			}
			s.logger.Info("Seeded dictionary item",
				zap.String("type", name),
				zap.String("value", it.Value),
			)
		}
	}
	return nil
}
