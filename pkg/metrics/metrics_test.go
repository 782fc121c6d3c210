package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then metrics use the jobguard namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.modelLoaded.Set(1)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "jobguard_inference_model_loaded")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names and labels follow the options", func() {
				manager.queueCapacity.Set(8)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() != "test_unit_queue_capacity" {
						continue
					}
					found = true
					labels := f.GetMetric()[0].GetLabel()
					So(labels, ShouldHaveLength, 1)
					So(labels[0].GetName(), ShouldEqual, "env")
					So(labels[0].GetValue(), ShouldEqual, "test")
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When two managers share a registry", func() {
			registry := prometheus.NewRegistry()
			_ = NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestPredictionMetrics(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When predictions are recorded", func() {
			fraud := globalManager.predictions.WithLabelValues(PathBatch, "fraudulent")
			legit := globalManager.predictions.WithLabelValues(PathBatch, "legitimate")
			beforeFraud, beforeLegit := testutil.ToFloat64(fraud), testutil.ToFloat64(legit)

			RecordPrediction(PathBatch, true, 0.97)
			RecordPrediction(PathBatch, false, 0.12)
			RecordPrediction(PathBatch, false, 0.31)

			Convey("Then counts are split by label", func() {
				So(testutil.ToFloat64(fraud)-beforeFraud, ShouldEqual, 1)
				So(testutil.ToFloat64(legit)-beforeLegit, ShouldEqual, 2)
			})
		})

		Convey("When the model gauges are updated", func() {
			UpdateModelLoaded(true)
			UpdateModelInfo("fraud_job_model", "v1", "logistic_regression")
			UpdateModelInfo("fraud_job_model", "v2", "random_forest")

			Convey("Then only the latest model identity is published", func() {
				So(testutil.ToFloat64(globalManager.modelLoaded), ShouldEqual, 1)
				So(testutil.CollectAndCount(globalManager.modelInfo), ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.modelInfo.WithLabelValues("fraud_job_model", "v2", "random_forest")), ShouldEqual, 1)
			})

			UpdateModelLoaded(false)
			So(testutil.ToFloat64(globalManager.modelLoaded), ShouldEqual, 0)
		})

		Convey("When queue metrics are updated", func() {
			UpdateQueueCapacity(64)
			UpdateQueueSize(16)
			UpdateQueueUtilization(0.25)
			full := globalManager.queueRejected.WithLabelValues("full")
			before := testutil.ToFloat64(full)
			RecordQueueRejected("full")

			Convey("Then gauges hold the last value and rejections count", func() {
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 16)
				So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 0.25)
				So(testutil.ToFloat64(full)-before, ShouldEqual, 1)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording helpers", t, func() {
		Convey("Then none of them panic", func() {
			So(func() {
				RecordPredictionError(PathSingle, "prediction_failed")
				RecordInferenceLatency(PathSingle, 1.5)
				RecordBatchSize(100)
				UpdateModelLoadDuration(12)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueWaitLatency(0.2)
				UpdateWorkerCount(4)
				UpdateWorkerActiveCount(1)
				UpdateWorkerIdleCount(3)
				RecordWorkerProcessingLatency(2)
				RecordWorkerError()
				RecordWorkerTaskAbandoned()
				RecordHTTPRequest("/predict", "POST", "200")
				RecordHTTPRequestDuration("/predict", "POST", "200", 3)
				RecordErrorByComponent("api", "validation_failed")
				RecordErrorByEndpoint("/predict", "POST", "validation_failed")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry gathers them", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
