package common

import (
	"strings"
	"testing"

	"github.com/nuibits/userbase"
)

func Test_UploadBundle_AdvancesWatermarkAndTruncates(t *testing.T) {
	svc, b := newTestService(ctx, userbase.Options{})
	defer svc.Close()
	b.users.AddUser(userbase.User{Username: "joe", UserID: "u"})

	for i := 0; i < 7; i++ {
		if _, err := svc.Submit(ctx, SubmitRequest{UserID: "u", ItemID: "a", Command: userbase.CommandInsert, Record: []byte{byte(i)}}); err != nil {
			t.Fatalf("Submit error: %v", err)
		}
	}

	lockID, ok, err := svc.AcquireBundleLock(ctx, "u")
	if err != nil || !ok {
		t.Fatalf("AcquireBundleLock failed: ok=%v err=%v", ok, err)
	}

	err = svc.UploadBundle(ctx, "u", 5, lockID, "application/octet-stream", strings.NewReader("snapshot"))
	if err != nil {
		t.Fatalf("UploadBundle error: %v", err)
	}

	if !b.bundles.Has("u/5") {
		t.Fatalf("bundle blob missing at u/5")
	}
	u, _ := b.users.GetByID(ctx, "u")
	if u.BundleSequenceNo != 5 {
		t.Fatalf("user watermark mismatch: got %d, want 5", u.BundleSequenceNo)
	}

	tail, err := svc.QueryTransactionLog(ctx, "u")
	if err != nil {
		t.Fatalf("QueryTransactionLog error: %v", err)
	}
	if tail.BundleSequenceNo != 5 {
		t.Fatalf("tail watermark mismatch: got %d, want 5", tail.BundleSequenceNo)
	}
	if len(tail.Transactions) != 1 || tail.Transactions[0].SequenceNo != 6 {
		t.Fatalf("tail above watermark mismatch: %+v", tail.Transactions)
	}

	// Upload released the lock; the next round can acquire again but may not
	// reuse a sequence number at or below the watermark.
	lockID, ok, _ = svc.AcquireBundleLock(ctx, "u")
	if !ok {
		t.Fatalf("reacquire after upload failed")
	}
	err = svc.UploadBundle(ctx, "u", 5, lockID, "", strings.NewReader("stale"))
	if !userbase.IsCode(err, userbase.BadInput) {
		t.Fatalf("stale sequence error mismatch: got %v, want BadInput", err)
	}
}

func Test_UploadBundle_RequiresLockOwnership(t *testing.T) {
	svc, b := newTestService(ctx, userbase.Options{})
	defer svc.Close()
	b.users.AddUser(userbase.User{Username: "joe", UserID: "u"})

	// No lock held at all.
	err := svc.UploadBundle(ctx, "u", 1, userbase.NewUUID(), "", strings.NewReader("x"))
	if !userbase.IsCode(err, userbase.Unauthorized) {
		t.Fatalf("error mismatch: got %v, want Unauthorized", err)
	}

	// Lock held by someone else.
	if _, ok, _ := svc.AcquireBundleLock(ctx, "u"); !ok {
		t.Fatalf("acquire failed")
	}
	err = svc.UploadBundle(ctx, "u", 1, userbase.NewUUID(), "", strings.NewReader("x"))
	if !userbase.IsCode(err, userbase.Unauthorized) {
		t.Fatalf("error mismatch: got %v, want Unauthorized", err)
	}
	if b.bundles.Has("u/1") {
		t.Fatalf("unauthorized upload stored a blob")
	}
}

func Test_UploadBundle_ValidatesInput(t *testing.T) {
	svc, _ := newTestService(ctx, userbase.Options{})
	defer svc.Close()

	if err := svc.UploadBundle(ctx, "u", 0, userbase.NewUUID(), "", strings.NewReader("x")); !userbase.IsCode(err, userbase.BadInput) {
		t.Fatalf("zero sequence error mismatch: got %v, want BadInput", err)
	}
	if err := svc.UploadBundle(ctx, "u", 1, userbase.NilUUID, "", strings.NewReader("x")); !userbase.IsCode(err, userbase.BadInput) {
		t.Fatalf("nil lock ID error mismatch: got %v, want BadInput", err)
	}
}

func Test_UploadBundle_FailureReleasesLock(t *testing.T) {
	svc, b := newTestService(ctx, userbase.Options{})
	defer svc.Close()
	b.users.AddUser(userbase.User{Username: "joe", UserID: "u"})
	b.bundles.ErrorOnUpload = userbase.Errorf(userbase.TransientFailure, "blob store down")

	lockID, ok, _ := svc.AcquireBundleLock(ctx, "u")
	if !ok {
		t.Fatalf("acquire failed")
	}
	err := svc.UploadBundle(ctx, "u", 1, lockID, "", strings.NewReader("x"))
	if !userbase.IsCode(err, userbase.TransientFailure) {
		t.Fatalf("error mismatch: got %v, want TransientFailure", err)
	}

	// Lock is not left stranded until lease expiry.
	b.bundles.ErrorOnUpload = nil
	lockID, ok, _ = svc.AcquireBundleLock(ctx, "u")
	if !ok {
		t.Fatalf("reacquire after failed upload blocked")
	}
	if err := svc.UploadBundle(ctx, "u", 1, lockID, "", strings.NewReader("x")); err != nil {
		t.Fatalf("retried upload error: %v", err)
	}
	u, _ := b.users.GetByID(ctx, "u")
	if u.BundleSequenceNo != 1 {
		t.Fatalf("user watermark mismatch: got %d, want 1", u.BundleSequenceNo)
	}
}

func Test_UploadBundle_UnknownUser(t *testing.T) {
	svc, _ := newTestService(ctx, userbase.Options{})
	defer svc.Close()

	lockID, ok, _ := svc.AcquireBundleLock(ctx, "ghost")
	if !ok {
		t.Fatalf("acquire failed")
	}
	err := svc.UploadBundle(ctx, "ghost", 1, lockID, "", strings.NewReader("x"))
	if !userbase.IsCode(err, userbase.NotFound) {
		t.Fatalf("error mismatch: got %v, want NotFound", err)
	}
}
