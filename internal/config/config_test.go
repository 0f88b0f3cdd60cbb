package config_test

import (
	"testing"

	"github.com/okian/foresight/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should carry the model defaults", func() {
			convey.So(cfg.HomeAdvantage, convey.ShouldEqual, 100.0)
			convey.So(cfg.TeamK, convey.ShouldEqual, 16.0)
			convey.So(cfg.PlayerK, convey.ShouldEqual, 10.0)
			convey.So(cfg.SeasonRegression, convey.ShouldEqual, 0.75)
			convey.So(cfg.MinMinutes, convey.ShouldEqual, 10.0)
			convey.So(cfg.ImpactCap, convey.ShouldEqual, 2.0)
			convey.So(cfg.PlayerRatingMin, convey.ShouldEqual, 1200.0)
			convey.So(cfg.PlayerRatingMax, convey.ShouldEqual, 2000.0)
			convey.So(cfg.TopN, convey.ShouldEqual, 20)
			convey.So(cfg.Preseed, convey.ShouldBeTrue)
			convey.So(cfg.InputLayout, convey.ShouldEqual, "unified")
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
