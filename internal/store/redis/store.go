package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/newtab/internal/domain"
)

const (
	// DefaultWeatherTTL is the default TTL for weather snapshots
	DefaultWeatherTTL = 15 * time.Minute
	// DefaultDocumentTTL is the default TTL for proxied documents
	DefaultDocumentTTL = 5 * time.Minute
)

// Store handles Redis operations for weather snapshots and proxied documents
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// SaveWeather stores a resolved weather snapshot under its unit
func (s *Store) SaveWeather(ctx context.Context, model domain.WeatherModel, ttl time.Duration) error {
	if !model.Resolved() {
		return errors.New("refusing to cache a placeholder weather model")
	}
	if ttl <= 0 {
		ttl = DefaultWeatherTTL
	}

	data, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("failed to marshal weather: %w", err)
	}

	if err := s.client.Set(ctx, WeatherKey(model.Unit), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save weather: %w", err)
	}

	return nil
}

// GetWeather retrieves the snapshot for a unit. ok is false on a cache miss.
func (s *Store) GetWeather(ctx context.Context, unit string) (domain.WeatherModel, bool, error) {
	data, err := s.client.Get(ctx, WeatherKey(domain.NormalizeUnit(unit))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.WeatherModel{}, false, nil
		}
		return domain.WeatherModel{}, false, fmt.Errorf("failed to get weather: %w", err)
	}

	var model domain.WeatherModel
	if err := json.Unmarshal(data, &model); err != nil {
		return domain.WeatherModel{}, false, fmt.Errorf("failed to unmarshal weather: %w", err)
	}
	if !model.Resolved() {
		return domain.WeatherModel{}, false, nil
	}

	return model, true, nil
}

// GetAllWeather retrieves every cached snapshot (one per unit at most)
func (s *Store) GetAllWeather(ctx context.Context) ([]domain.WeatherModel, error) {
	units := []string{domain.UnitCelsius, domain.UnitFahrenheit}
	keys := make([]string, 0, len(units))
	for _, u := range units {
		keys = append(keys, WeatherKey(u))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get weather snapshots: %w", err)
	}

	models := make([]domain.WeatherModel, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // missing key
		}
		var model domain.WeatherModel
		if err := json.Unmarshal([]byte(raw), &model); err != nil {
			// Skip snapshots that couldn't be decoded
			continue
		}
		if model.Resolved() {
			models = append(models, model)
		}
	}

	return models, nil
}
