package common

import (
	"io"
	"strings"
	"testing"

	"github.com/nuibits/userbase"
)

func Test_QueryDbState_StreamsBundle(t *testing.T) {
	svc, b := newTestService(ctx, userbase.Options{})
	defer svc.Close()
	b.users.AddUser(userbase.User{Username: "joe", UserID: "u"})

	lockID, _, _ := svc.AcquireBundleLock(ctx, "u")
	if err := svc.UploadBundle(ctx, "u", 3, lockID, "application/x-sqlite3", strings.NewReader("dbstate")); err != nil {
		t.Fatalf("UploadBundle error: %v", err)
	}

	obj, err := svc.QueryDbState(ctx, "u", 3)
	if err != nil {
		t.Fatalf("QueryDbState error: %v", err)
	}
	defer obj.Body.Close()
	data, _ := io.ReadAll(obj.Body)
	if string(data) != "dbstate" {
		t.Fatalf("body mismatch: %q", data)
	}
	if obj.ContentLength != int64(len("dbstate")) {
		t.Fatalf("content length mismatch: %d", obj.ContentLength)
	}
	if obj.ContentType != "application/x-sqlite3" {
		t.Fatalf("content type mismatch: %q", obj.ContentType)
	}
}

func Test_QueryDbState_MissingBundleIsNotFound(t *testing.T) {
	svc, _ := newTestService(ctx, userbase.Options{})
	defer svc.Close()

	_, err := svc.QueryDbState(ctx, "u", 9)
	if !userbase.IsCode(err, userbase.NotFound) {
		t.Fatalf("error mismatch: got %v, want NotFound", err)
	}
}

func Test_QueryTransactionLog_EmptyUser(t *testing.T) {
	svc, _ := newTestService(ctx, userbase.Options{})
	defer svc.Close()

	tail, err := svc.QueryTransactionLog(ctx, "nobody")
	if err != nil {
		t.Fatalf("QueryTransactionLog error: %v", err)
	}
	if tail.BundleSequenceNo != 0 || len(tail.Transactions) != 0 {
		t.Fatalf("empty user tail mismatch: %+v", tail)
	}
}
