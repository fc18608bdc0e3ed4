package handler

import (
	"context"
	"net/http"
	"time"

	"repairpos/internal/infra"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// EventsStatus is the slice of the event dispatcher the health check reads.
type EventsStatus interface {
	Pending() int
	BreakerState() infra.CBState
	DeadLetters(ctx context.Context) (int64, error)
}

// Health returns a JSON health check response. Only the database decides the
// status code; the event pipeline is reported alongside.
// events is nil when EVENTS_ENABLED is off.
func Health(db *gorm.DB, events EventsStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok": status == http.StatusOK,
			"db": dbStatus,
		}
		if events == nil {
			body["events"] = gin.H{"enabled": false}
		} else {
			ev := gin.H{
				"enabled": true,
				"breaker": events.BreakerState().String(),
				"pending": events.Pending(),
			}
			if n, err := events.DeadLetters(ctx); err == nil {
				ev["dead_letters"] = n
			} else {
				ev["dead_letters"] = "unknown"
			}
			body["events"] = ev
		}
		c.JSON(status, body)
	}
}
