package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

// Study is a validated study configuration together with the sweep plans
// it expands to.
type Study struct {
	// Config is the parsed configuration.
	Config *StudyConfig
	// Plans holds one plan per sweep, in configuration order.
	Plans []domain.SweepPlan
	// Hash is the SHA256 of the normalized configuration.
	Hash string
}

// Plan returns the plan of the sweep with the given ID.
func (s *Study) Plan(id string) (domain.SweepPlan, bool) {
	for _, p := range s.Plans {
		if p.Name == id {
			return p, true
		}
	}
	return domain.SweepPlan{}, false
}

// StudyLoader provides YAML parsing, validation, and caching for study
// configurations, turning declarative sweep definitions into executable
// sweep plans.
// Use StudyLoader to load studies from files or readers while benefiting
// from SHA256-based caching and comprehensive validation.
type StudyLoader struct {
	// validator performs struct field validation and the custom study
	// validators.
	validator *validator.Validate
	// cache stores compiled studies indexed by SHA256 hash of the normalized
	// configuration.
	// WARNING: Cached studies MUST NOT be mutated.
	cache map[string]*Study
	// cacheMu provides thread-safe access to the cache map.
	cacheMu sync.RWMutex
	// sf prevents duplicate compilation when multiple goroutines request
	// the same study simultaneously.
	sf singleflight.Group
}

// NewStudyLoader creates a new study loader with validation capabilities
// and an empty cache.
// NewStudyLoader returns an error if validator registration fails.
func NewStudyLoader() (*StudyLoader, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &StudyLoader{
		validator: v,
		cache:     make(map[string]*Study),
	}, nil
}

// LoadFromFile loads and compiles a study from a YAML file.
// WARNING: The returned study is a pointer to a cached instance. Callers
// MUST NOT mutate it.
// LoadFromFile returns an error if file reading, parsing, validation, or
// plan compilation fails.
func (sl *StudyLoader) LoadFromFile(ctx context.Context, path string) (*Study, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ports.NewConfigError(cleanPath, fmt.Errorf("%w: %w", ports.ErrConfigNotFound, err))
	}
	if err != nil {
		return nil, ports.NewConfigError(cleanPath, fmt.Errorf("failed to read file: %w", err))
	}

	return sl.load(ctx, data)
}

// LoadFromReader loads and compiles a study from an io.Reader.
// LoadFromReader reads all data into memory and applies the same caching
// and validation as LoadFromFile.
func (sl *StudyLoader) LoadFromReader(ctx context.Context, r io.Reader) (*Study, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return sl.load(ctx, data)
}

// load is the common implementation for loading studies from byte data,
// utilizing singleflight to prevent duplicate compilation and SHA256-based
// caching for efficiency.
func (sl *StudyLoader) load(ctx context.Context, data []byte) (*Study, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	config, err := sl.parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Hash the normalized config, not raw bytes, so formatting changes
	// hit the cache.
	hash, err := sl.calculateConfigHash(config)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := sl.sf.Do(hash, func() (any, error) {
		if study, ok := sl.getCachedStudy(hash); ok {
			return study, nil
		}

		if err := sl.validateConfig(config); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		study, err := sl.buildStudy(config, hash)
		if err != nil {
			return nil, fmt.Errorf("failed to build study: %w", err)
		}

		sl.cacheStudy(hash, study)
		return study, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Study), nil
}

// parseYAML unmarshals YAML data into a StudyConfig using strict decoding
// so that misspelled fields are rejected instead of silently ignored.
func (sl *StudyLoader) parseYAML(data []byte) (*StudyConfig, error) {
	var config StudyConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

// validateConfig performs struct validation followed by semantic
// validation.
func (sl *StudyLoader) validateConfig(config *StudyConfig) error {
	if err := sl.validator.Struct(config); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	if err := validateSweepSemantics(config); err != nil {
		return fmt.Errorf("semantic validation failed: %w", err)
	}

	return nil
}

// buildStudy expands every sweep into a plan, deriving seeds for sweeps
// that do not set one.
func (sl *StudyLoader) buildStudy(config *StudyConfig, hash string) (*Study, error) {
	study := &Study{
		Config: config,
		Plans:  make([]domain.SweepPlan, 0, len(config.Sweeps)),
		Hash:   hash,
	}

	for _, sweep := range config.Sweeps {
		plan, err := config.Plan(sweep, 0)
		if err != nil {
			return nil, err
		}
		if sweep.Seed == nil && config.Execution.Seed == nil {
			if plan.Seed, err = derivedSeed(plan); err != nil {
				return nil, err
			}
		}
		study.Plans = append(study.Plans, plan)
	}
	return study, nil
}

// calculateConfigHash generates a SHA256 hash of the normalized
// configuration.
func (sl *StudyLoader) calculateConfigHash(config *StudyConfig) (string, error) {
	normalized, err := yaml.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config for hashing: %w", err)
	}

	hash := sha256.Sum256(normalized)
	return hex.EncodeToString(hash[:]), nil
}

// getCachedStudy retrieves a compiled study from the cache.
func (sl *StudyLoader) getCachedStudy(hash string) (*Study, bool) {
	sl.cacheMu.RLock()
	defer sl.cacheMu.RUnlock()
	study, ok := sl.cache[hash]
	return study, ok
}

// cacheStudy stores a compiled study in the cache.
func (sl *StudyLoader) cacheStudy(hash string, study *Study) {
	sl.cacheMu.Lock()
	defer sl.cacheMu.Unlock()
	sl.cache[hash] = study
}

// ClearCache removes all cached studies.
func (sl *StudyLoader) ClearCache() {
	sl.cacheMu.Lock()
	defer sl.cacheMu.Unlock()
	sl.cache = make(map[string]*Study)
}

// derivedSeed returns a reproducible seed for an unseeded plan. Only the
// resolved plan is hashed, so metadata and execution settings such as the
// worker count never change the result.
func derivedSeed(plan domain.SweepPlan) (uint64, error) {
	plan.Seed = 0
	data, err := yaml.Marshal(plan)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal plan %s for seeding: %w", plan.Name, err)
	}
	sum := sha256.Sum256(data)
	return binary.BigEndian.Uint64(sum[:8]), nil
}
