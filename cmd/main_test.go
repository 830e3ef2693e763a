package main

import (
	"context"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	repository "github.com/challwatch/challwatch/internal/adapters/repository"
	"github.com/challwatch/challwatch/internal/config"
)

func TestMainWiring(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("CHALLWATCH_ADDR", ":8080")
			_ = os.Setenv("CHALLWATCH_BOOTSTRAP_THRESHOLD", "50")
			defer func() {
				_ = os.Unsetenv("CHALLWATCH_ADDR")
				_ = os.Unsetenv("CHALLWATCH_BOOTSTRAP_THRESHOLD")
			}()

			convey.Convey("Then it loads with the overrides applied", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.BootstrapThreshold, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When no database path is configured", func() {
			cfg := config.New(context.Background())
			cfg.DatabasePath = ""

			store, err := openStore(cfg)

			convey.Convey("Then the in-memory store is selected", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok := store.(*repository.MemoryStore)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(store.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When a database path is configured", func() {
			cfg := config.New(context.Background())
			cfg.DatabasePath = t.TempDir() + "/challwatch.db"

			store, err := openStore(cfg)

			convey.Convey("Then the SQLite store opens there", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok := store.(*repository.SQLiteStore)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(store.Close(), convey.ShouldBeNil)
			})
		})
	})
}
