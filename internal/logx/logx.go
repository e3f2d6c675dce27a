// Package logx writes one JSON object per line for business events
// (bookings, reviews, auth) next to echo's access log.
package logx

import (
	"encoding/json"
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

type entry struct {
	TS     string         `json:"ts"`
	Level  string         `json:"level"`
	ReqID  string         `json:"req_id,omitempty"`
	IP     string         `json:"ip,omitempty"`
	Method string         `json:"method,omitempty"`
	Path   string         `json:"path,omitempty"`
	UserID any            `json:"user_id,omitempty"`
	Action string         `json:"action"`
	Err    string         `json:"err,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

func write(level string, c echo.Context, action string, err error, fields map[string]any) {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: level, Action: action, Fields: fields}
	if c != nil {
		e.IP = c.RealIP()
		e.Method = c.Request().Method
		e.Path = c.Path()
		e.UserID = c.Get("user_id")
		e.ReqID = c.Response().Header().Get(echo.HeaderXRequestID)
	}
	if err != nil {
		e.Err = err.Error()
	}
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

// Info records an expected outcome, including business rejections such as
// a booking refused for lack of tables.
func Info(c echo.Context, action string, fields map[string]any) { write("info", c, action, nil, fields) }

// Audit records a state change a restaurant or customer may ask about later.
func Audit(c echo.Context, action string, fields map[string]any) {
	write("audit", c, action, nil, fields)
}

// Security records failed authentication and authorization attempts.
func Security(c echo.Context, action string, fields map[string]any) {
	write("warn", c, action, nil, fields)
}

// Error records a failure the operator has to look at.
func Error(c echo.Context, action string, err error, fields map[string]any) {
	write("error", c, action, err, fields)
}
