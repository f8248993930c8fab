package main

import (
	"context"
	"testing"
	"time"
)

func TestBuildStoreSurvivesStartupContextCancel(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("ROOT_FOLDER_NAME", "LogVault_Test")

	startupCtx, startupCancel := context.WithTimeout(context.Background(), time.Minute)
	store, rootID, backend := buildStore(context.Background(), startupCtx)
	startupCancel()

	if backend != "memory" {
		t.Fatalf("backend: got %q, want memory", backend)
	}
	if rootID == "" {
		t.Fatal("empty root folder ID")
	}

	// The startup context only bounds the calls made inside buildStore.
	// Cancelling it must not affect the store afterwards: later calls
	// carry their own contexts.
	blobID, err := store.PutBlob(context.Background(), "a.txt", rootID, []byte("hello"))
	if err != nil {
		t.Fatalf("PutBlob after startup cancel: %v", err)
	}
	data, err := store.GetBlob(context.Background(), blobID)
	if err != nil {
		t.Fatalf("GetBlob after startup cancel: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q, want hello", string(data))
	}
}
