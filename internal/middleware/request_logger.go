package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger writes one logrus entry per request.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"remote_ip":  v.RemoteIP,
				"request_id": v.RequestID,
			})
			switch {
			case v.Status >= 500:
				entry.WithError(v.Error).Error("request failed")
			case v.Error != nil:
				entry.WithError(v.Error).Warn("request rejected")
			default:
				entry.Info("request")
			}
			return nil
		},
	})
}
