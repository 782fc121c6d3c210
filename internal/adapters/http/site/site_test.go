package site

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given a site handler", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()

		Convey("When registering the site handler", func() {
			Register(ctx, mux)

			Convey("Then an API client should get the JSON banner", func() {
				req := httptest.NewRequest("GET", "/", nil)
				req.Header.Set("Accept", "application/json")
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
				var body map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["message"], ShouldEqual, Banner)
			})

			Convey("And a browser should get the landing page", func() {
				req := httptest.NewRequest("GET", "/", nil)
				req.Header.Set("Accept", "text/html,application/xhtml+xml")
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(w.Body.String(), ShouldContainSubstring, "/predict/batch")
			})

			Convey("And unknown paths should be a JSON 404", func() {
				req := httptest.NewRequest("GET", "/some-asset", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldContainSubstring, `"code":"not_found"`)
			})

			Convey("And POST / should be rejected", func() {
				req := httptest.NewRequest("POST", "/", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldEqual, "GET, HEAD")
			})
		})
	})

	Convey("Given a nil mux", t, func() {
		Convey("Then Register should panic", func() {
			So(func() { Register(context.Background(), nil) }, ShouldPanic)
		})
	})

	Convey("Given the embedded assets", t, func() {
		Convey("Then the landing page should be present", func() {
			So(len(indexPage()), ShouldBeGreaterThan, 0)
		})
	})
}
