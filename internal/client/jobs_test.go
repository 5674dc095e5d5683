package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	api "github.com/mediakit/asset-console/api/v1alpha1"
	"github.com/mediakit/asset-console/internal/client"
)

var _ = Describe("jobs client", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("ListJobs", func() {
		It("returns the job snapshot", func() {
			progress := 42
			snapshot := []api.JobRecord{
				{JobID: "job-1", Status: api.JobStatusStaging, Progress: &progress},
				{JobID: "job-2", Status: api.JobStatusCompleted, DownloadUrls: []string{"https://cdn.example.com/a.zip"}},
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodGet))
				Expect(r.URL.Path).To(Equal("/api/v1/downloads/jobs"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				Expect(json.NewEncoder(w).Encode(snapshot)).To(Succeed())
			}))
			defer server.Close()

			c := client.NewJobsClient(server.URL, 5*time.Second)
			jobs, err := c.ListJobs(ctx)
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(2))
			Expect(jobs[0].JobID).To(Equal("job-1"))
			Expect(*jobs[0].Progress).To(Equal(42))
			Expect(jobs[1].DownloadUrls).To(HaveLen(1))
		})

		It("returns an empty snapshot", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("[]"))
			}))
			defer server.Close()

			c := client.NewJobsClient(server.URL, 5*time.Second)
			jobs, err := c.ListJobs(ctx)
			Expect(err).To(BeNil())
			Expect(jobs).To(BeEmpty())
		})

		It("fails on an error status", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("boom"))
			}))
			defer server.Close()

			c := client.NewJobsClient(server.URL, 5*time.Second)
			_, err := c.ListJobs(ctx)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("status 500"))
		})

		It("fails on a malformed body", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("{not json"))
			}))
			defer server.Close()

			c := client.NewJobsClient(server.URL, 5*time.Second)
			_, err := c.ListJobs(ctx)
			Expect(err).To(HaveOccurred())
		})

		It("honors context cancellation", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(time.Second)
			}))
			defer server.Close()

			cancelCtx, cancel := context.WithCancel(ctx)
			cancel()

			c := client.NewJobsClient(server.URL, 5*time.Second)
			_, err := c.ListJobs(cancelCtx)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DeleteJob", func() {
		It("issues the delete", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodDelete))
				Expect(r.URL.Path).To(Equal("/api/v1/downloads/jobs/job-1"))
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			c := client.NewJobsClient(server.URL, 5*time.Second)
			Expect(c.DeleteJob(ctx, "job-1")).To(Succeed())
		})

		It("treats an already-deleted job as success", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			c := client.NewJobsClient(server.URL, 5*time.Second)
			Expect(c.DeleteJob(ctx, "job-1")).To(Succeed())
		})

		It("fails on an error status", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer server.Close()

			c := client.NewJobsClient(server.URL, 5*time.Second)
			err := c.DeleteJob(ctx, "job-1")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("status 502"))
		})
	})
})
