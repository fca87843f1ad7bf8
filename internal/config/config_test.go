package config

import (
	"log/slog"
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    Config
		wantErr bool
	}{
		{
			name: "defaults",
			want: Config{
				HTTPAddr:      ":8080",
				DBPath:        "data/reveal.db",
				LogLevel:      slog.LevelInfo,
				ExperienceDir: "experiences",
				SPADir:        "../web/dist",
				SignalBuffer:  256,
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"HTTP_ADDR":      ":9090",
				"DB_PATH":        ":memory:",
				"LOG_LEVEL":      "DEBUG",
				"EXPERIENCE_DIR": "/srv/reveal",
				"SPA_DIR":        "web",
				"REDIS_URL":      "redis://localhost:6379/0",
				"SIGNAL_BUFFER":  "16",
			},
			want: Config{
				HTTPAddr:      ":9090",
				DBPath:        ":memory:",
				LogLevel:      slog.LevelDebug,
				ExperienceDir: "/srv/reveal",
				SPADir:        "web",
				RedisURL:      "redis://localhost:6379/0",
				SignalBuffer:  16,
			},
		},
		{
			name:    "bad level",
			env:     map[string]string{"LOG_LEVEL": "LOUD"},
			wantErr: true,
		},
		{
			name:    "zero buffer",
			env:     map[string]string{"SIGNAL_BUFFER": "0"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			got, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if *got != tt.want {
				t.Errorf("Load() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}
