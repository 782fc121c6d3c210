package probe

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCheckSeparation(t *testing.T) {
	Convey("Given predictions from a threshold classifier", t, func() {
		Convey("When the labels are cleanly separated", func() {
			preds := []Prediction{{0, 0.1}, {1, 0.9}, {0, 0.4}, {1, 0.6}}

			Convey("Then the check passes", func() {
				So(checkSeparation(preds), ShouldBeNil)
			})
		})

		Convey("When both labels sit exactly on the boundary", func() {
			preds := []Prediction{{0, 0.5}, {1, 0.5}, {0, 0.2}, {1, 0.8}}

			Convey("Then the check passes", func() {
				So(checkSeparation(preds), ShouldBeNil)
			})
		})

		Convey("When a legitimate posting outscores a fraudulent one", func() {
			preds := []Prediction{{0, 0.7}, {1, 0.6}}

			Convey("Then the check fails verification", func() {
				So(errors.Is(checkSeparation(preds), ErrVerification), ShouldBeTrue)
			})
		})

		Convey("When only one label is present", func() {
			Convey("Then the check passes", func() {
				So(checkSeparation([]Prediction{{0, 0.3}, {0, 0.5}}), ShouldBeNil)
				So(checkSeparation([]Prediction{{1, 0.5}}), ShouldBeNil)
				So(checkSeparation(nil), ShouldBeNil)
			})
		})
	})
}
