package handler

import (
	"context"
	"errors"
	"time"

	"github.com/facecheck/attendance-system/internal/core/ports"
)

type stubCheckinService struct {
	result *ports.CheckinResult
	err    error
	gotIn  ports.CheckinInput
}

func (s *stubCheckinService) CheckIn(ctx context.Context, in ports.CheckinInput) (*ports.CheckinResult, error) {
	s.gotIn = in
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubRosterService struct {
	result *ports.ScanResult
	err    error
	gotNow time.Time
}

func (s *stubRosterService) UncheckedFor(ctx context.Context, date string) ([]string, error) {
	return nil, errors.New("not used")
}

func (s *stubRosterService) Scan(ctx context.Context, now time.Time) (*ports.ScanResult, error) {
	s.gotNow = now
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubDirectoryService struct {
	snapshot *ports.BindingSnapshot
	err      error
}

func (s *stubDirectoryService) Bind(ctx context.Context, name, accountID string) error {
	return s.err
}

func (s *stubDirectoryService) Snapshot(ctx context.Context) (*ports.BindingSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

func (s *stubDirectoryService) Resolve(ctx context.Context, name string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if id, ok := s.snapshot.NameToAccount[name]; ok {
		return id, nil
	}
	return "", errors.New("not bound")
}

func (s *stubDirectoryService) NameOf(ctx context.Context, accountID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if name, ok := s.snapshot.AccountToName[accountID]; ok {
		return name, nil
	}
	return "", errors.New("not bound")
}

type sentMessage struct {
	target string
	text   string
}

type stubNotifier struct {
	replies  []sentMessage
	pushes   []sentMessage
	replyErr error
	pushErr  error
}

func (n *stubNotifier) Reply(ctx context.Context, replyToken, text string) error {
	if n.replyErr != nil {
		return n.replyErr
	}
	n.replies = append(n.replies, sentMessage{target: replyToken, text: text})
	return nil
}

func (n *stubNotifier) Push(ctx context.Context, accountID, text string) error {
	if n.pushErr != nil {
		return n.pushErr
	}
	n.pushes = append(n.pushes, sentMessage{target: accountID, text: text})
	return nil
}

type stubResponder struct {
	reply string
	err   error
	got   []string
}

func (r *stubResponder) RespondToText(ctx context.Context, accountID, text string) (string, error) {
	r.got = append(r.got, accountID+":"+text)
	if r.err != nil {
		return "", r.err
	}
	return r.reply, nil
}

type stubDiagnostics struct {
	info *ports.StorageInfo
	err  error
}

func (d *stubDiagnostics) Probe(ctx context.Context) (*ports.StorageInfo, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.info, nil
}
