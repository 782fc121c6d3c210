package model_test

import (
	"context"
	"testing"

	model "github.com/okian/jobguard/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestJobPosting_CombinedText(t *testing.T) {
	convey.Convey("Given a job posting", t, func() {
		convey.Convey("When all fields are set", func() {
			job := model.JobPosting{
				Title:          "Data Analyst",
				CompanyProfile: "Acme Corp",
				Description:    "Analyse data",
				Requirements:   "SQL",
			}

			convey.Convey("Then fields are joined by single spaces in fixed order", func() {
				convey.So(job.CombinedText(), convey.ShouldEqual, "Data Analyst Acme Corp Analyse data SQL")
			})
		})

		convey.Convey("When some fields are empty", func() {
			job := model.JobPosting{Title: "a", Description: "b"}

			convey.Convey("Then empty fields keep their separators", func() {
				convey.So(job.CombinedText(), convey.ShouldEqual, "a  b ")
			})
		})

		convey.Convey("When every field is empty", func() {
			job := model.JobPosting{}

			convey.Convey("Then the text is three spaces", func() {
				convey.So(job.CombinedText(), convey.ShouldEqual, "   ")
			})
		})

		convey.Convey("When fields carry their own whitespace", func() {
			job := model.JobPosting{Title: " padded ", Requirements: "x\n"}

			convey.Convey("Then it is preserved verbatim", func() {
				convey.So(job.CombinedText(), convey.ShouldEqual, " padded    x\n")
			})
		})
	})
}

func TestCombinedTexts(t *testing.T) {
	convey.Convey("Given several postings", t, func() {
		jobs := []model.JobPosting{
			{Title: "first"},
			{Title: "second"},
			{Title: "third"},
		}

		convey.Convey("Then texts are built in input order", func() {
			texts := model.CombinedTexts(jobs)
			convey.So(texts, convey.ShouldResemble, []string{"first   ", "second   ", "third   "})
		})

		convey.Convey("And an empty input yields an empty slice", func() {
			texts := model.CombinedTexts(nil)
			convey.So(texts, convey.ShouldNotBeNil)
			convey.So(texts, convey.ShouldBeEmpty)
		})
	})
}

func TestPredictionResult(t *testing.T) {
	convey.Convey("Given prediction results", t, func() {
		convey.So(model.PredictionResult{FraudPrediction: 1, FraudProbability: 0.9}.IsFraudulent(), convey.ShouldBeTrue)
		convey.So(model.PredictionResult{FraudPrediction: 0, FraudProbability: 0.1}.IsFraudulent(), convey.ShouldBeFalse)
	})
}

func TestNewInferenceTask(t *testing.T) {
	convey.Convey("Given a new inference task", t, func() {
		ctx := context.Background()
		task := model.NewInferenceTask(ctx, "task-1", []string{"a", "b"})

		convey.Convey("Then it carries its inputs and a buffered reply channel", func() {
			convey.So(task.ID, convey.ShouldEqual, "task-1")
			convey.So(task.Texts, convey.ShouldResemble, []string{"a", "b"})
			convey.So(task.EnqueuedAt.IsZero(), convey.ShouldBeFalse)
			convey.So(cap(task.Reply), convey.ShouldEqual, 1)
		})

		convey.Convey("And a reply can be sent without a waiting receiver", func() {
			task.Reply <- model.InferenceOutcome{}
			convey.So(len(task.Reply), convey.ShouldEqual, 1)
		})
	})
}
