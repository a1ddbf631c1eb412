// Package redis keeps simulation progress, route polylines and driver
// positions in Redis:
//
//	simulation:{tenant}:{driver}        progress, rewritten every tick
//	route:{tenant}:{driver}             polyline, written once per start
//	driver:{tenant}:{driver}:location   last known position
//
// Values are JSON and expire after the configured TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/simulation"
	"logistics/internal/core/domain/model/tracking"

	goredis "github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = time.Hour

	scanCount         = 100
	maxScanIterations = 10

	simulationPrefix = "simulation:"
)

func simulationKey(k simulation.Key) string {
	return fmt.Sprintf("simulation:%s:%s", k.TenantID, k.DriverID)
}

func routeKey(k simulation.Key) string {
	return fmt.Sprintf("route:%s:%s", k.TenantID, k.DriverID)
}

func locationKey(tenantID kernel.TenantID, driverID kernel.UUID) string {
	return fmt.Sprintf("driver:%s:%s:location", tenantID, driverID)
}

// Store implements ports.SimulationStore and ports.LocationStore.
type Store struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

func NewStore(client goredis.UniversalClient, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

func (s *Store) SaveState(ctx context.Context, state simulation.State) error {
	return s.setJSON(ctx, simulationKey(state.Key()), toStateRecord(state))
}

func (s *Store) GetState(ctx context.Context, key simulation.Key) (*simulation.State, error) {
	var rec stateRecord
	found, err := s.getJSON(ctx, simulationKey(key), &rec)
	if err != nil || !found {
		return nil, err
	}
	state, err := rec.toDomain()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", simulationKey(key), err)
	}
	return &state, nil
}

func (s *Store) DeleteState(ctx context.Context, key simulation.Key) error {
	return s.client.Del(ctx, simulationKey(key)).Err()
}

func (s *Store) SaveRoute(ctx context.Context, key simulation.Key, route simulation.Route) error {
	return s.setJSON(ctx, routeKey(key), toRouteRecord(route))
}

func (s *Store) GetRoute(ctx context.Context, key simulation.Key) (*simulation.Route, error) {
	var rec routeRecord
	found, err := s.getJSON(ctx, routeKey(key), &rec)
	if err != nil || !found {
		return nil, err
	}
	route, err := rec.toDomain()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", routeKey(key), err)
	}
	return &route, nil
}

func (s *Store) DeleteRoute(ctx context.Context, key simulation.Key) error {
	return s.client.Del(ctx, routeKey(key)).Err()
}

// ListKeys scans simulation keys of one tenant, or of all tenants when
// tenantID is empty. The scan stops after a fixed number of cursor
// iterations, so very large keyspaces are listed partially.
func (s *Store) ListKeys(ctx context.Context, tenantID kernel.TenantID) ([]simulation.Key, error) {
	raw, err := s.scan(ctx, simulationPattern(tenantID))
	if err != nil {
		return nil, err
	}

	keys := make([]simulation.Key, 0, len(raw))
	for _, r := range raw {
		k, ok := parseSimulationKey(r)
		if !ok || (tenantID != "" && k.TenantID != tenantID) {
			continue
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// FindStateByShipment looks through the tenant's persisted simulations
// for one driving shipmentID.
func (s *Store) FindStateByShipment(
	ctx context.Context,
	tenantID kernel.TenantID,
	shipmentID kernel.UUID,
) (*simulation.State, error) {
	raw, err := s.scan(ctx, simulationPattern(tenantID))
	if err != nil || len(raw) == 0 {
		return nil, err
	}

	for start := 0; start < len(raw); start += scanCount {
		batch := raw[start:min(start+scanCount, len(raw))]
		values, mErr := s.client.MGet(ctx, batch...).Result()
		if mErr != nil {
			return nil, mErr
		}
		for _, v := range values {
			str, ok := v.(string)
			if !ok {
				continue
			}
			var rec stateRecord
			if json.Unmarshal([]byte(str), &rec) != nil || rec.ShipmentID != shipmentID.String() ||
				rec.TenantID != tenantID.String() {
				continue
			}
			state, dErr := rec.toDomain()
			if dErr != nil {
				continue
			}
			return &state, nil
		}
	}
	return nil, nil
}

func (s *Store) SaveDriverLocation(ctx context.Context, loc tracking.DriverLocation) error {
	return s.setJSON(ctx, locationKey(loc.TenantID, loc.DriverID), toLocationRecord(loc))
}

func (s *Store) GetDriverLocation(
	ctx context.Context,
	tenantID kernel.TenantID,
	driverID kernel.UUID,
) (*tracking.DriverLocation, error) {
	var rec locationRecord
	found, err := s.getJSON(ctx, locationKey(tenantID, driverID), &rec)
	if err != nil || !found {
		return nil, err
	}
	loc, err := rec.toDomain(tenantID, driverID)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

func (s *Store) getJSON(ctx context.Context, key string, v any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, v)
}

func (s *Store) scan(ctx context.Context, pattern string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for i := 0; i < maxScanIterations; i++ {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

func simulationPattern(tenantID kernel.TenantID) string {
	if tenantID == "" {
		return simulationPrefix + "*"
	}
	return simulationPrefix + globEscaper.Replace(tenantID.String()) + ":*"
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func parseSimulationKey(raw string) (simulation.Key, bool) {
	rest, ok := strings.CutPrefix(raw, simulationPrefix)
	if !ok {
		return simulation.Key{}, false
	}
	tenant, driver, ok := strings.Cut(rest, ":")
	if !ok {
		return simulation.Key{}, false
	}
	driverID, err := kernel.UUIDFromString(driver)
	if err != nil {
		return simulation.Key{}, false
	}
	return simulation.NewKey(kernel.TenantID(tenant), driverID), true
}
