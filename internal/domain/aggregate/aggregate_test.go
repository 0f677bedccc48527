package aggregate_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/assay/internal/domain/aggregate"
	"github.com/okian/assay/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var abcd = []string{"A", "B", "C", "D"}

func assessment(id string, responses ...model.Response) model.Assessment {
	return model.Assessment{
		ID:                id,
		Date:              time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC),
		OperationalAreaID: "op-1",
		Responses:         responses,
	}
}

func single(question string, idx int, score float64) model.Response {
	return model.Response{
		Question: question,
		Answer:   []int{idx},
		Score:    score,
		Options:  abcd,
		Type:     model.QuestionSingle,
	}
}

func TestAggregateEmpty(t *testing.T) {
	Convey("Given no assessments", t, func() {
		Convey("When aggregating nil", func() {
			agg := aggregate.Aggregate(nil)

			Convey("Then the aggregation should be empty", func() {
				So(agg.Len(), ShouldEqual, 0)
				So(agg.Questions(), ShouldBeEmpty)
				So(agg.Buckets(), ShouldBeEmpty)
				So(agg.Assessments(), ShouldEqual, 0)
			})
		})

		Convey("When aggregating assessments without responses", func() {
			agg := aggregate.Aggregate([]model.Assessment{assessment("a1"), assessment("a2")})

			Convey("Then no buckets should be created", func() {
				So(agg.Len(), ShouldEqual, 0)
				So(agg.Assessments(), ShouldEqual, 2)
			})
		})
	})
}

func TestAggregateAccumulation(t *testing.T) {
	Convey("Given two assessments answering the same question", t, func() {
		input := []model.Assessment{
			assessment("a1", single("Q1", 0, 4)),
			assessment("a2", single("Q1", 2, 2)),
		}

		Convey("When aggregating", func() {
			agg := aggregate.Aggregate(input)
			b, ok := agg.Bucket("Q1")

			Convey("Then the bucket should accumulate both responses", func() {
				So(ok, ShouldBeTrue)
				So(b.Count, ShouldEqual, 2)
				So(b.TotalScore, ShouldEqual, 6.0)
				So(b.Answers, ShouldResemble, [][]int{{0}, {2}})
				So(b.Type, ShouldEqual, model.QuestionSingle)
			})

			Convey("And the average score should be 3", func() {
				avg, err := b.AverageScore()
				So(err, ShouldBeNil)
				So(avg, ShouldEqual, 3.0)
			})
		})

		Convey("When the input is mutated after aggregating", func() {
			agg := aggregate.Aggregate(input)
			input[0].Responses[0].Answer[0] = 3
			b, _ := agg.Bucket("Q1")

			Convey("Then the bucket should keep its own copy", func() {
				So(b.Answers[0], ShouldResemble, []int{0})
			})
		})
	})
}

func TestAggregateOrdering(t *testing.T) {
	Convey("Given questions appearing in different orders across assessments", t, func() {
		input := []model.Assessment{
			assessment("a1", single("Q2", 1, 3), single("Q1", 0, 4)),
			assessment("a2", single("Q3", 3, 1), single("Q1", 1, 3), single("Q2", 0, 4)),
		}

		Convey("When aggregating", func() {
			agg := aggregate.Aggregate(input)

			Convey("Then questions should follow first-occurrence order", func() {
				So(agg.Questions(), ShouldResemble, []string{"Q2", "Q1", "Q3"})
				buckets := agg.Buckets()
				So(len(buckets), ShouldEqual, 3)
				So(buckets[0].Question, ShouldEqual, "Q2")
				So(buckets[2].Question, ShouldEqual, "Q3")
			})

			Convey("And answers should follow input order", func() {
				b, _ := agg.Bucket("Q2")
				So(b.Answers, ShouldResemble, [][]int{{1}, {0}})
			})

			Convey("And repeated runs should produce identical results", func() {
				again := aggregate.Aggregate(input)
				So(again.Questions(), ShouldResemble, agg.Questions())
				for _, q := range agg.Questions() {
					x, _ := agg.Bucket(q)
					y, _ := again.Bucket(q)
					So(y, ShouldResemble, x)
				}
			})
		})
	})
}

func TestAggregateFirstWriteWins(t *testing.T) {
	Convey("Given the same question text asked with different option lists", t, func() {
		first := model.Response{Question: "Q1", Answer: []int{0}, Score: 4, Options: []string{"Yes", "No"}, Type: model.QuestionSingle}
		second := model.Response{Question: "Q1", Answer: []int{1}, Score: 1, Options: []string{"W", "X", "Y", "Z"}, Type: model.QuestionMulti}

		Convey("When aggregating", func() {
			b, _ := aggregate.Aggregate([]model.Assessment{
				assessment("a1", first),
				assessment("a2", second),
			}).Bucket("Q1")

			Convey("Then options and type should come from the first response only", func() {
				So(b.Options, ShouldResemble, []string{"Yes", "No"})
				So(b.Type, ShouldEqual, model.QuestionSingle)
			})

			Convey("And both responses should still be merged into one bucket", func() {
				So(b.Count, ShouldEqual, 2)
				So(b.TotalScore, ShouldEqual, 5.0)
			})
		})
	})
}

func TestDerivedMetrics(t *testing.T) {
	Convey("Given a bucket with answers [[0],[1],[0]] over two options", t, func() {
		b := &aggregate.Bucket{
			Answers: [][]int{{0}, {1}, {0}},
			Options: []string{"Yes", "No"},
			Count:   3,
			Type:    model.QuestionSingle,
		}

		Convey("Then answer counts should tally each option", func() {
			So(b.AnswerCounts(), ShouldResemble, []int{2, 1})
		})

		Convey("And percentages should round to whole numbers", func() {
			So(b.OptionPercentage(0), ShouldEqual, 67)
			So(b.OptionPercentage(1), ShouldEqual, 33)
			So(b.OptionPercentages(), ShouldResemble, []int{67, 33})
		})

		Convey("And options outside the list should report zero", func() {
			So(b.OptionPercentage(2), ShouldEqual, 0)
			So(b.OptionPercentage(-1), ShouldEqual, 0)
		})
	})

	Convey("Given a bucket where some options were never picked", t, func() {
		b := &aggregate.Bucket{Answers: [][]int{{3}}, Options: abcd, Count: 1}

		Convey("Then unpicked options should count zero", func() {
			So(b.AnswerCounts(), ShouldResemble, []int{0, 0, 0, 1})
			So(b.Selected(3), ShouldBeTrue)
			So(b.Selected(0), ShouldBeFalse)
		})
	})

	Convey("Given a multi-select bucket with two respondents picking two options each", t, func() {
		b := &aggregate.Bucket{
			Answers: [][]int{{0, 1}, {0, 2}},
			Options: []string{"Email", "Chat", "Phone"},
			Count:   2,
			Type:    model.QuestionMulti,
		}

		Convey("Then the denominator should be total selections, not respondents", func() {
			So(b.TotalSelections(), ShouldEqual, 4)
			So(b.OptionPercentage(0), ShouldEqual, 50)
			So(b.OptionPercentage(1), ShouldEqual, 25)
			So(b.OptionPercentage(2), ShouldEqual, 25)
		})
	})

	Convey("Given a bucket with no answers at all", t, func() {
		b := &aggregate.Bucket{Options: abcd, Answers: [][]int{{}, {}}, Count: 2}

		Convey("Then every percentage should be zero", func() {
			for i := range abcd {
				So(b.OptionPercentage(i), ShouldEqual, 0)
			}
			So(b.OptionPercentages(), ShouldResemble, []int{0, 0, 0, 0})
		})
	})

	Convey("Given a bucket with a zero count", t, func() {
		b := &aggregate.Bucket{Options: abcd}

		Convey("Then the average should be reported as missing", func() {
			avg, err := b.AverageScore()
			So(err, ShouldEqual, aggregate.ErrNoResponses)
			So(math.IsNaN(avg), ShouldBeTrue)
		})
	})

	Convey("Given answers that reference options outside the list", t, func() {
		b := &aggregate.Bucket{Answers: [][]int{{0}, {7}, {-1}}, Options: []string{"A", "B"}, Count: 3}

		Convey("Then tallying should skip them without panicking", func() {
			So(func() { b.AnswerCounts() }, ShouldNotPanic)
			So(b.AnswerCounts(), ShouldResemble, []int{1, 0})
		})

		Convey("And they should still count toward the denominator", func() {
			So(b.TotalSelections(), ShouldEqual, 3)
			So(b.OptionPercentage(0), ShouldEqual, 33)
		})
	})
}
