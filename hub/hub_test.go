// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package hub

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

// fakeHub serves the tags of "library/postgres" in pages of two tags.
func fakeHub(tags []string) *httptest.Server {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repositories/library/postgres/tags" {
			http.NotFound(w, r)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if r.URL.Query().Get("page_size") != "20" || r.Header.Get("Accept") != "application/json" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		from := (page - 1) * 2
		to := min(from+2, len(tags))
		next := "null"
		if to < len(tags) {
			next = fmt.Sprintf(`"%s%s?page=%d"`, srv.URL, r.URL.Path, page+1)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"count":%d,"next":%s,"previous":null,"results":[`, len(tags), next)
		for idx, tag := range tags[from:to] {
			if idx > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"name":%q,"digest":"sha256:%d"}`, tag, idx)
		}
		fmt.Fprint(w, "]}")
	}))
	return srv
}

var _ = Describe("Docker Hub client", func() {

	It("fetches all tag pages", func(ctx context.Context) {
		srv := fakeHub([]string{"latest", "16", "16-alpine", "15", "bookworm"})
		defer srv.Close()
		tags := Successful(NewClient(srv.URL + "/").Tags(ctx, "postgres"))
		Expect(Names(tags)).To(HaveExactElements("latest", "16", "16-alpine", "15", "bookworm"))
		Expect(tags[0].Digest).To(Equal("sha256:0"))
	})

	It("fetches a repository without tags", func(ctx context.Context) {
		srv := fakeHub(nil)
		defer srv.Close()
		Expect(NewClient(srv.URL).Tags(ctx, "library/postgres")).To(BeEmpty())
	})

	It("reports API errors", func(ctx context.Context) {
		srv := fakeHub(nil)
		defer srv.Close()
		Expect(NewClient(srv.URL).Tags(ctx, "library/nonexisting")).Error().To(
			MatchError(ContainSubstring("404")))
	})

	It("reports garbage", func(ctx context.Context) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "{")
		}))
		defer srv.Close()
		Expect(NewClient(srv.URL).Tags(ctx, "postgres")).Error().To(
			MatchError(ContainSubstring("cannot parse tags")))
	})

	It("defaults to the Docker Hub", func() {
		Expect(NewClient("").baseURL).To(Equal(DefaultBaseURL))
	})

})
