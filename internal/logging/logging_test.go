package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSessionFieldsAttached(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	baseLogger = zap.New(core)
	sugar = baseLogger.Sugar()
	sessionID.Store("")
	playSeq = 0

	SetSessionID("session-abc")
	StartPlayback()
	Infof("hello")

	logs := recorded.All()
	if len(logs) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(logs))
	}

	fields := map[string]interface{}{}
	for _, field := range logs[0].Context {
		fields[field.Key] = field.Interface
		if field.Type == zapcore.StringType {
			fields[field.Key] = field.String
		}
		if field.Type == zapcore.Uint64Type {
			fields[field.Key] = uint64(field.Integer)
		}
	}

	if fields["session_id"] != "session-abc" {
		t.Fatalf("expected session_id to be session-abc, got %v", fields["session_id"])
	}
	if fields["play_seq"] != uint64(1) {
		t.Fatalf("expected play_seq to be 1, got %v", fields["play_seq"])
	}
}

func TestNewSessionIDUnique(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()
	if a == "" || b == "" {
		t.Fatal("expected non-empty session ids")
	}
	if a == b {
		t.Fatalf("expected unique session ids, got %s twice", a)
	}
}
