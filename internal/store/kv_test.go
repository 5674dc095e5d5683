package store_test

import (
	"context"
	"fmt"

	"github.com/mediakit/asset-console/internal/config"
	"github.com/mediakit/asset-console/internal/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const (
	insertKeyValueStm = "INSERT INTO key_values (key, value) VALUES ('%s', '%s');"
)

var _ = Describe("kv store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		cfg, err := config.NewDefault()
		Expect(err).To(BeNil())
		db, err := store.InitDB(cfg)
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM key_values;")
	})

	Context("get", func() {
		It("returns the stored value", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertKeyValueStm, "dismissedJobIds", `["job-1"]`))
			Expect(tx.Error).To(BeNil())

			value, err := s.KV().Get(context.TODO(), "dismissedJobIds")
			Expect(err).To(BeNil())
			Expect(value).To(Equal(`["job-1"]`))
		})

		It("returns ErrRecordNotFound for an absent key", func() {
			_, err := s.KV().Get(context.TODO(), "missing")
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("set", func() {
		It("creates a new key", func() {
			err := s.KV().Set(context.TODO(), "notifications", "[]")
			Expect(err).To(BeNil())

			value, err := s.KV().Get(context.TODO(), "notifications")
			Expect(err).To(BeNil())
			Expect(value).To(Equal("[]"))
		})

		It("overwrites an existing key", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertKeyValueStm, "unseenNotificationIds", `["a"]`))
			Expect(tx.Error).To(BeNil())

			err := s.KV().Set(context.TODO(), "unseenNotificationIds", `["a","b"]`)
			Expect(err).To(BeNil())

			value, err := s.KV().Get(context.TODO(), "unseenNotificationIds")
			Expect(err).To(BeNil())
			Expect(value).To(Equal(`["a","b"]`))

			var count int64
			gormdb.Table("key_values").Count(&count)
			Expect(count).To(Equal(int64(1)))
		})
	})

	Context("transaction", func() {
		It("commits the pending writes", func() {
			ctx, err := s.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			Expect(s.KV().Set(ctx, "notifications", "[]")).To(BeNil())

			_, err = store.Commit(ctx)
			Expect(err).To(BeNil())

			value, err := s.KV().Get(context.TODO(), "notifications")
			Expect(err).To(BeNil())
			Expect(value).To(Equal("[]"))
		})

		It("discards writes on rollback", func() {
			ctx, err := s.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			Expect(s.KV().Set(ctx, "notifications", "[]")).To(BeNil())

			_, err = store.Rollback(ctx)
			Expect(err).To(BeNil())

			_, err = s.KV().Get(context.TODO(), "notifications")
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("delete", func() {
		It("removes the key", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertKeyValueStm, "seenJobStatusKeys", `["job-1:COMPLETED"]`))
			Expect(tx.Error).To(BeNil())

			err := s.KV().Delete(context.TODO(), "seenJobStatusKeys")
			Expect(err).To(BeNil())

			_, err = s.KV().Get(context.TODO(), "seenJobStatusKeys")
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})

		It("is a no-op for an absent key", func() {
			Expect(s.KV().Delete(context.TODO(), "missing")).To(BeNil())
		})
	})
})
