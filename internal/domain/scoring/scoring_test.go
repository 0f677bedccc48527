package scoring_test

import (
	"sync"
	"testing"

	"github.com/okian/assay/internal/domain/model"
	scoring "github.com/okian/assay/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPoints(t *testing.T) {
	Convey("Given the default scoring ladder", t, func() {
		Convey("When scoring a single-select question", func() {
			Convey("Then indices 0..3 should score 4,3,2,1", func() {
				So(scoring.Points(model.QuestionSingle, 0), ShouldEqual, 4.0)
				So(scoring.Points(model.QuestionSingle, 1), ShouldEqual, 3.0)
				So(scoring.Points(model.QuestionSingle, 2), ShouldEqual, 2.0)
				So(scoring.Points(model.QuestionSingle, 3), ShouldEqual, 1.0)
			})

			Convey("And out-of-range indices should fall off the ladder without failing", func() {
				So(scoring.Points(model.QuestionSingle, 4), ShouldEqual, 0.0)
				So(scoring.Points(model.QuestionSingle, 6), ShouldEqual, -2.0)
			})
		})

		Convey("When scoring a multi-select question", func() {
			Convey("Then every option should score one point", func() {
				for i := 0; i < 8; i++ {
					So(scoring.Points(model.QuestionMulti, i), ShouldEqual, 1.0)
				}
			})
		})

		Convey("When scoring an unknown question type", func() {
			Convey("Then it should score zero", func() {
				So(scoring.Points(model.QuestionType("ranking"), 0), ShouldEqual, 0.0)
				So(scoring.Points(model.QuestionType(""), 2), ShouldEqual, 0.0)
			})
		})
	})
}

func TestScorerOptions(t *testing.T) {
	Convey("Given a scorer with a custom top score", t, func() {
		scorer := scoring.NewScorer(scoring.WithSingleTopScore(5))

		Convey("Then the ladder should start at the configured value", func() {
			So(scorer.TopScore(), ShouldEqual, 5.0)
			So(scorer.Points(model.QuestionSingle, 0), ShouldEqual, 5.0)
			So(scorer.Points(model.QuestionSingle, 4), ShouldEqual, 1.0)
		})

		Convey("And multi-select points should be unaffected", func() {
			So(scorer.Points(model.QuestionMulti, 3), ShouldEqual, 1.0)
		})
	})

	Convey("Given a non-positive top score", t, func() {
		scorer := scoring.NewScorer(scoring.WithSingleTopScore(0))

		Convey("Then the default ladder should be kept", func() {
			So(scorer.TopScore(), ShouldEqual, 4.0)
		})
	})
}

func TestResponseScore(t *testing.T) {
	Convey("Given a default scorer", t, func() {
		scorer := scoring.NewScorer()

		Convey("When scoring a single-select response", func() {
			r := model.Response{Type: model.QuestionSingle, Answer: []int{1}}

			Convey("Then it should equal the points of the selected option", func() {
				So(scorer.ResponseScore(r), ShouldEqual, 3.0)
			})
		})

		Convey("When scoring a multi-select response", func() {
			r := model.Response{Type: model.QuestionMulti, Answer: []int{0, 2, 3}}

			Convey("Then it should count one point per selection", func() {
				So(scorer.ResponseScore(r), ShouldEqual, 3.0)
			})
		})

		Convey("When scoring an empty answer", func() {
			Convey("Then it should be zero", func() {
				So(scorer.ResponseScore(model.Response{Type: model.QuestionSingle}), ShouldEqual, 0.0)
			})
		})
	})
}

func TestScorerConcurrency(t *testing.T) {
	Convey("Given a shared scorer", t, func() {
		scorer := scoring.NewScorer()

		Convey("When scored from many goroutines", func() {
			var wg sync.WaitGroup
			results := make([]float64, 50)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i] = scorer.Points(model.QuestionSingle, i%4)
				}(i)
			}
			wg.Wait()

			Convey("Then every result should match the ladder", func() {
				for i, got := range results {
					So(got, ShouldEqual, float64(4-i%4))
				}
			})
		})
	})
}
