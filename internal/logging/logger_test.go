package logging

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInitLevel(t *testing.T) {
	cases := []struct {
		name  string
		level string
		want  zapcore.Level
	}{
		{"debug", "DEBUG", zapcore.DebugLevel},
		{"warn_with_spaces", " warn ", zapcore.WarnLevel},
		{"unknown_is_info", "громко", zapcore.InfoLevel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lg, err := Init(tc.level, "dev")
			if err != nil {
				t.Fatalf("Init: %v", err)
			}
			defer lg.Closer()
			if got := lg.Level.Level(); got != tc.want {
				t.Fatalf("уровень %v, ожидали %v", got, tc.want)
			}
		})
	}
}

func TestLevelHandlerChangesLevel(t *testing.T) {
	lg, err := Init("info", "prod")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer lg.Closer()

	req := httptest.NewRequest(http.MethodPut, "/debug/loglevel", strings.NewReader(`{"level":"error"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	lg.LevelHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d: %s", rec.Code, rec.Body.String())
	}
	if got := lg.Level.Level(); got != zapcore.ErrorLevel {
		t.Fatalf("уровень не поменялся: %v", got)
	}
}
