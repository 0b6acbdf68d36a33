package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Quota interface {
	// Take consumes one unit for the user and reports whether the user was still within the limit.
	Take(userID string) bool
	// Refund returns a unit taken for an action that did not complete.
	Refund(userID string)
	Limit() int
}

// UploadQuota counts uploads per user and forgets all counts at local midnight.
type UploadQuota struct {
	users      map[string]int
	dailyLimit int
	mutex      *sync.Mutex
}

func NewUploadQuota(ctx context.Context) *UploadQuota {
	q := &UploadQuota{
		users:      make(map[string]int),
		dailyLimit: viper.GetInt("upload.daily_limit"),
		mutex:      &sync.Mutex{},
	}

	go q.ResetDaily(ctx)

	return q
}

func (q *UploadQuota) Limit() int {
	return q.dailyLimit
}

// Take never refuses when the daily limit is zero.
func (q *UploadQuota) Take(userID string) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.dailyLimit > 0 && q.users[userID] >= q.dailyLimit {
		return false
	}

	q.users[userID]++
	return true
}

func (q *UploadQuota) Refund(userID string) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	// counts may have been reset since the unit was taken
	if q.users[userID] > 0 {
		q.users[userID]--
	}
}

func (q *UploadQuota) ResetDaily(ctx context.Context) {
	reset := getNextResetTime()

	for {
		log.Debug().Time("reset", reset).Msg("running upload quota reset timer")
		select {
		case <-time.After(time.Until(reset)):
			log.Debug().Msg("resetting upload quota")
			q.mutex.Lock()
			q.users = make(map[string]int)
			q.mutex.Unlock()
			time.Sleep(time.Second)
			reset = getNextResetTime()
		case <-ctx.Done():
			log.Debug().Msg("stopping upload quota reset")
			return
		}
	}
}

// TimeUntilReset is shown to users that ran out of quota.
func TimeUntilReset() time.Duration {
	return time.Until(getNextResetTime()).Truncate(time.Second)
}

func getNextResetTime() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}
