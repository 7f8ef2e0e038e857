package seatmap

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"buslane/internal/shared/faults"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps seat state in Redis. Holds are per-seat keys whose TTL is
// the hold TTL, so expiry needs no janitor; booked seats live in one hash per
// trip-date. All multi-seat operations run as Lua scripts so that check and
// mark happen atomically.
type RedisStore struct {
	client *redis.Client

	holdSHA    string
	commitSHA  string
	releaseSHA string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Lua script for atomic seat holding.
const luaTryHold = `
-- KEYS[1] = booked hash
-- ARGV[1] = hold_id
-- ARGV[2] = ttl_seconds
-- ARGV[3] = hold key prefix
-- ARGV[4..N] = seat numbers

local hold_id = ARGV[1]
local ttl = tonumber(ARGV[2])
local prefix = ARGV[3]

for i = 4, #ARGV do
    local seat = ARGV[i]
    if redis.call("HEXISTS", KEYS[1], seat) == 1 then
        return {0, seat}
    end
    if redis.call("EXISTS", prefix .. seat) == 1 then
        return {0, seat}
    end
end

for i = 4, #ARGV do
    redis.call("SETEX", prefix .. ARGV[i], ttl, hold_id)
end

return {1, "ok"}
`

// Lua script for atomic hold commit.
const luaCommitHold = `
-- KEYS[1] = booked hash
-- ARGV[1] = hold_id
-- ARGV[2] = reservation_id
-- ARGV[3] = hold key prefix
-- ARGV[4..N] = seat numbers

local hold_id = ARGV[1]
local reservation_id = ARGV[2]
local prefix = ARGV[3]

for i = 4, #ARGV do
    if redis.call("GET", prefix .. ARGV[i]) ~= hold_id then
        return {0, ARGV[i]}
    end
end

for i = 4, #ARGV do
    local seat = ARGV[i]
    redis.call("HSET", KEYS[1], seat, reservation_id)
    redis.call("DEL", prefix .. seat)
end

return {1, "ok"}
`

// Lua script for atomic hold release.
const luaReleaseHold = `
-- ARGV[1] = hold_id
-- ARGV[2] = hold key prefix
-- ARGV[3..N] = seat numbers

local hold_id = ARGV[1]
local prefix = ARGV[2]
local released = 0

for i = 3, #ARGV do
    local key = prefix .. ARGV[i]
    if redis.call("GET", key) == hold_id then
        redis.call("DEL", key)
        released = released + 1
    end
end

return {1, released}
`

func bookedKey(tripID uuid.UUID, date string) string {
	return fmt.Sprintf("seatmap:booked:%s:%s", tripID, date)
}

func holdKeyPrefix(tripID uuid.UUID, date string) string {
	return fmt.Sprintf("seatmap:hold:%s:%s:", tripID, date)
}

// PreloadScripts loads the Lua scripts so later calls go through EVALSHA.
func (r *RedisStore) PreloadScripts(ctx context.Context) error {
	var err error
	if r.holdSHA, err = r.client.ScriptLoad(ctx, luaTryHold).Result(); err != nil {
		return fmt.Errorf("failed to load hold script: %w", err)
	}
	if r.commitSHA, err = r.client.ScriptLoad(ctx, luaCommitHold).Result(); err != nil {
		return fmt.Errorf("failed to load commit script: %w", err)
	}
	if r.releaseSHA, err = r.client.ScriptLoad(ctx, luaReleaseHold).Result(); err != nil {
		return fmt.Errorf("failed to load release script: %w", err)
	}
	return nil
}

// eval runs a script by SHA when preloaded, falling back to plain EVAL.
func (r *RedisStore) eval(ctx context.Context, script, sha string, keys []string, args ...interface{}) ([]interface{}, error) {
	var result interface{}
	var err error
	if sha != "" {
		result, err = r.client.EvalSha(ctx, sha, keys, args...).Result()
	}
	if sha == "" || err != nil {
		result, err = r.client.Eval(ctx, script, keys, args...).Result()
		if err != nil {
			return nil, err
		}
	}

	resultArray, ok := result.([]interface{})
	if !ok || len(resultArray) != 2 {
		return nil, fmt.Errorf("unexpected result format from Lua script")
	}
	return resultArray, nil
}

func (r *RedisStore) Availability(ctx context.Context, tripID uuid.UUID, date string, capacity int) (map[int]SeatState, error) {
	booked, err := r.client.HGetAll(ctx, bookedKey(tripID, date)).Result()
	if err != nil {
		return nil, faults.Unavailable(err)
	}

	prefix := holdKeyPrefix(tripID, date)
	holdKeys := make([]string, 0, capacity)
	for seat := 1; seat <= capacity; seat++ {
		holdKeys = append(holdKeys, prefix+strconv.Itoa(seat))
	}
	holds, err := r.client.MGet(ctx, holdKeys...).Result()
	if err != nil {
		return nil, faults.Unavailable(err)
	}

	states := make(map[int]SeatState, capacity)
	for seat := 1; seat <= capacity; seat++ {
		state := SeatState{Status: SeatFree}
		if holds[seat-1] != nil {
			state = SeatState{Status: SeatHeld}
		}
		if reservationID, ok := booked[strconv.Itoa(seat)]; ok {
			state = SeatState{Status: SeatBooked, ReservationID: reservationID}
		}
		states[seat] = state
	}
	return states, nil
}

func (r *RedisStore) TryHold(ctx context.Context, tripID uuid.UUID, date string, seats []int, ttl time.Duration) (*Hold, error) {
	holdID := uuid.New().String()

	args := []interface{}{
		holdID,
		strconv.Itoa(int(ttl.Seconds())),
		holdKeyPrefix(tripID, date),
	}
	for _, seat := range seats {
		args = append(args, strconv.Itoa(seat))
	}

	result, err := r.eval(ctx, luaTryHold, r.holdSHA, []string{bookedKey(tripID, date)}, args...)
	if err != nil {
		return nil, faults.Unavailable(err)
	}

	if success, _ := result[0].(int64); success == 0 {
		return nil, faults.SeatUnavailable(conflictSeat(result[1]))
	}

	return &Hold{
		ID:        holdID,
		TripID:    tripID,
		Date:      date,
		Seats:     append([]int(nil), seats...),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (r *RedisStore) Commit(ctx context.Context, hold *Hold, reservationID string) error {
	args := []interface{}{
		hold.ID,
		reservationID,
		holdKeyPrefix(hold.TripID, hold.Date),
	}
	for _, seat := range hold.Seats {
		args = append(args, strconv.Itoa(seat))
	}

	result, err := r.eval(ctx, luaCommitHold, r.commitSHA, []string{bookedKey(hold.TripID, hold.Date)}, args...)
	if err != nil {
		return faults.Unavailable(err)
	}

	if success, _ := result[0].(int64); success == 0 {
		return faults.HoldExpired(hold.ID)
	}
	return nil
}

func (r *RedisStore) Release(ctx context.Context, hold *Hold) error {
	args := []interface{}{
		hold.ID,
		holdKeyPrefix(hold.TripID, hold.Date),
	}
	for _, seat := range hold.Seats {
		args = append(args, strconv.Itoa(seat))
	}

	if _, err := r.eval(ctx, luaReleaseHold, r.releaseSHA, []string{}, args...); err != nil {
		return faults.Unavailable(err)
	}
	return nil
}

func (r *RedisStore) MarkBooked(ctx context.Context, tripID uuid.UUID, date string, seats []int, reservationID string) error {
	values := make([]interface{}, 0, len(seats)*2)
	for _, seat := range seats {
		values = append(values, strconv.Itoa(seat), reservationID)
	}
	if err := r.client.HSet(ctx, bookedKey(tripID, date), values...).Err(); err != nil {
		return faults.Unavailable(err)
	}
	return nil
}

func (r *RedisStore) Free(ctx context.Context, tripID uuid.UUID, date string, seats []int) error {
	fields := make([]string, 0, len(seats))
	for _, seat := range seats {
		fields = append(fields, strconv.Itoa(seat))
	}
	if err := r.client.HDel(ctx, bookedKey(tripID, date), fields...).Err(); err != nil {
		return faults.Unavailable(err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, tripID uuid.UUID, date string) error {
	if err := r.client.Del(ctx, bookedKey(tripID, date)).Err(); err != nil {
		return faults.Unavailable(err)
	}
	// Hold keys carry their own TTL; booked state is what replay rebuilds.
	return nil
}

func conflictSeat(raw interface{}) int {
	if s, ok := raw.(string); ok {
		if seat, err := strconv.Atoi(s); err == nil {
			return seat
		}
	}
	return 0
}
