package config_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/okian/carelog/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DefaultRoleWeight, convey.ShouldEqual, 5)
			convey.So(cfg.RationaleWindow(), convey.ShouldEqual, 72*time.Hour)
			convey.So(cfg.MaxRationaleSnippets, convey.ShouldEqual, 6)
			convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 0)
			convey.So(cfg.RateLimitBurst, convey.ShouldEqual, 20)
		})

		convey.Convey("Then the default role weights are present", func() {
			convey.So(cfg.RoleWeights["Physician"], convey.ShouldEqual, 12)
			convey.So(cfg.RoleWeights["Concierge Lead"], convey.ShouldEqual, 10)
			convey.So(cfg.RoleWeights["Member"], convey.ShouldEqual, 0)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(config.Validate(cfg), convey.ShouldBeNil)
		})
	})
}
