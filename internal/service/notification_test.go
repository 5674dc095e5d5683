package service_test

import (
	"context"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	api "github.com/mediakit/asset-console/api/v1alpha1"
	"github.com/mediakit/asset-console/internal/config"
	"github.com/mediakit/asset-console/internal/notify"
	"github.com/mediakit/asset-console/internal/service"
	"github.com/mediakit/asset-console/internal/store"
)

type stubDeleter struct {
	mu      sync.Mutex
	deleted []string
}

func (d *stubDeleter) DeleteJob(_ context.Context, jobID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleted = append(d.deleted, jobID)
	return nil
}

var _ = Describe("notification service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB

		engine     *notify.Engine
		controller *notify.DismissalController
		scheduler  notify.Scheduler
		feed       *notify.Store
		keys       *notify.KeySets
		deleter    *stubDeleter
		svc        *service.NotificationService
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

	BeforeEach(func() {
		feed = notify.NewNotificationStore(context.TODO(), s.KV())
		keys = notify.NewKeySets(s.KV())
		deleter = &stubDeleter{}
		scheduler = notify.NewScheduler()
		controller = notify.NewDismissalController(feed, keys, deleter, scheduler, nil)
		engine = notify.NewEngine(feed, keys, controller, nil)
		svc = service.NewNotificationService(feed, keys, controller, engine)
	})

	AfterEach(func() {
		scheduler.Stop()
		gormdb.Exec("DELETE FROM key_values;")
	})

	Context("list", func() {
		It("returns an empty feed", func() {
			list, err := svc.ListNotifications(context.TODO())
			Expect(err).To(BeNil())
			Expect(list.Notifications).To(BeEmpty())
			Expect(list.UnseenCount).To(Equal(0))
		})

		It("returns the reconciled feed with the badge count", func() {
			err := engine.Reconcile(context.TODO(), []api.JobRecord{
				{JobID: "job-1", Status: api.JobStatusInitiated},
				{JobID: "job-2", Status: api.JobStatusCompleted},
			})
			Expect(err).To(BeNil())

			list, err := svc.ListNotifications(context.TODO())
			Expect(err).To(BeNil())
			Expect(list.Notifications).To(HaveLen(2))
			Expect(list.UnseenCount).To(Equal(2))
			Expect(list.Notifications[0].Message).To(Equal("Initiating your bulk download..."))
			Expect(list.Notifications[1].Type).To(Equal(api.NotificationTypeStickyDismissible))
		})
	})

	Context("mark as seen", func() {
		It("returns not found for an unknown id", func() {
			err := svc.MarkNotificationSeen(context.TODO(), "missing")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrNotificationNotFound{}))
		})

		It("acknowledges a single notification", func() {
			err := engine.Reconcile(context.TODO(), []api.JobRecord{
				{JobID: "job-1", Status: api.JobStatusStaging},
				{JobID: "job-2", Status: api.JobStatusStaging},
			})
			Expect(err).To(BeNil())

			list, err := svc.ListNotifications(context.TODO())
			Expect(err).To(BeNil())
			id := list.Notifications[0].ID

			Expect(svc.MarkNotificationSeen(context.TODO(), id)).To(BeNil())

			list, err = svc.ListNotifications(context.TODO())
			Expect(err).To(BeNil())
			Expect(list.UnseenCount).To(Equal(1))
			Expect(list.Notifications[0].Seen).To(BeTrue())
			Expect(list.Notifications[1].Seen).To(BeFalse())
		})

		It("keeps an acknowledged status dark across recreation", func() {
			err := engine.Reconcile(context.TODO(), []api.JobRecord{{JobID: "job-1", Status: api.JobStatusStaging}})
			Expect(err).To(BeNil())

			list, err := svc.ListNotifications(context.TODO())
			Expect(err).To(BeNil())
			Expect(svc.MarkNotificationSeen(context.TODO(), list.Notifications[0].ID)).To(BeNil())

			// rebuild on a fresh feed, as a new session would
			gormdb.Exec("DELETE FROM key_values WHERE key = 'notifications';")
			feed2 := notify.NewNotificationStore(context.TODO(), s.KV())
			engine2 := notify.NewEngine(feed2, keys, notify.NewDismissalController(feed2, keys, deleter, scheduler, nil), nil)

			err = engine2.Reconcile(context.TODO(), []api.JobRecord{{JobID: "job-1", Status: api.JobStatusStaging}})
			Expect(err).To(BeNil())

			Expect(keys.Get(context.TODO(), notify.KeyUnseenNotificationIDs)).To(BeEmpty())
		})

		It("acknowledges the whole feed at once", func() {
			err := engine.Reconcile(context.TODO(), []api.JobRecord{
				{JobID: "job-1", Status: api.JobStatusStaging},
				{JobID: "job-2", Status: api.JobStatusCompleted},
			})
			Expect(err).To(BeNil())

			Expect(svc.MarkAllNotificationsSeen(context.TODO())).To(BeNil())

			list, err := svc.ListNotifications(context.TODO())
			Expect(err).To(BeNil())
			Expect(list.UnseenCount).To(Equal(0))
			for _, n := range list.Notifications {
				Expect(n.Seen).To(BeTrue())
			}
			Expect(keys.Contains(context.TODO(), notify.KeySeenJobStatusKeys, "job-2:COMPLETED")).To(BeTrue())
		})
	})

	Context("dismiss", func() {
		It("returns not found for an unknown id", func() {
			_, err := svc.DismissNotification(context.TODO(), "missing", false)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrNotificationNotFound{}))
		})

		It("rejects dismissal of a sticky notification", func() {
			err := engine.Reconcile(context.TODO(), []api.JobRecord{{JobID: "job-1", Status: api.JobStatusStaging}})
			Expect(err).To(BeNil())

			list, err := svc.ListNotifications(context.TODO())
			Expect(err).To(BeNil())

			_, err = svc.DismissNotification(context.TODO(), list.Notifications[0].ID, false)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrNotificationNotDismissible{}))
		})

		It("asks for confirmation before removing a completed download", func() {
			err := engine.Reconcile(context.TODO(), []api.JobRecord{{JobID: "job-1", Status: api.JobStatusCompleted}})
			Expect(err).To(BeNil())

			list, err := svc.ListNotifications(context.TODO())
			Expect(err).To(BeNil())
			id := list.Notifications[0].ID

			result, err := svc.DismissNotification(context.TODO(), id, false)
			Expect(err).To(BeNil())
			Expect(result.RequiresConfirmation).To(BeTrue())
			Expect(result.Dismissed).To(BeFalse())

			list, err = svc.ListNotifications(context.TODO())
			Expect(err).To(BeNil())
			Expect(list.Notifications).To(HaveLen(1))
		})

		It("removes a confirmed dismissal and does not recreate it", func() {
			err := engine.Reconcile(context.TODO(), []api.JobRecord{{JobID: "job-1", Status: api.JobStatusCompleted}})
			Expect(err).To(BeNil())

			list, err := svc.ListNotifications(context.TODO())
			Expect(err).To(BeNil())
			id := list.Notifications[0].ID

			result, err := svc.DismissNotification(context.TODO(), id, true)
			Expect(err).To(BeNil())
			Expect(result.Dismissed).To(BeTrue())

			list, err = svc.ListNotifications(context.TODO())
			Expect(err).To(BeNil())
			Expect(list.Notifications).To(BeEmpty())
			Expect(list.UnseenCount).To(Equal(0))

			Eventually(func() []string {
				deleter.mu.Lock()
				defer deleter.mu.Unlock()
				return append([]string{}, deleter.deleted...)
			}).Should(ContainElement("job-1"))
		})

		It("removes a failed notification without confirmation", func() {
			err := engine.Reconcile(context.TODO(), []api.JobRecord{{JobID: "job-1", Status: api.JobStatusFailed, Error: "disk full"}})
			Expect(err).To(BeNil())

			list, err := svc.ListNotifications(context.TODO())
			Expect(err).To(BeNil())
			Expect(list.Notifications[0].Message).To(Equal(fmt.Sprintf("Download failed: %s", "disk full")))

			result, err := svc.DismissNotification(context.TODO(), list.Notifications[0].ID, false)
			Expect(err).To(BeNil())
			Expect(result.Dismissed).To(BeTrue())

			list, err = svc.ListNotifications(context.TODO())
			Expect(err).To(BeNil())
			Expect(list.Notifications).To(BeEmpty())
		})
	})
})
