package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
	"tutor-connect-go/internal/config"
	"tutor-connect-go/internal/model"
)

// fakeRoomStore 是 RoomRepository 的内存实现。
type fakeRoomStore struct {
	mu       sync.Mutex
	rooms    map[string]*model.ChatRoom
	messages []*model.RoomMessage
	now      time.Time
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{
		rooms: make(map[string]*model.ChatRoom),
		now:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRoomStore) CreateRoom(room *model.ChatRoom) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := room.Validate(); err != nil {
		return err
	}
	f.now = f.now.Add(time.Second)
	cp := *room
	cp.CreatedAt = f.now
	f.rooms[room.ID] = &cp
	return nil
}

func (f *fakeRoomStore) FindByID(roomID string) (*model.ChatRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, errNotFound
	}
	cp := *room
	return &cp, nil
}

func (f *fakeRoomStore) FindDmRoom(dmKey string) (*model.ChatRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, room := range f.rooms {
		if room.Type == model.RoomTypeDM && room.DmKey != nil && *room.DmKey == dmKey {
			cp := *room
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRoomStore) FindDmRoomsFor(uid string) ([]model.ChatRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ChatRoom
	for _, room := range f.rooms {
		if room.Type == model.RoomTypeDM && room.Members.Contains(uid) {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (f *fakeRoomStore) FindPublicRooms() ([]model.ChatRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ChatRoom
	for _, room := range f.rooms {
		if room.Type == model.RoomTypePublic {
			out = append(out, *room)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeRoomStore) DeleteRooms(roomIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range roomIDs {
		delete(f.rooms, id)
	}
	return nil
}

func (f *fakeRoomStore) SaveMessage(message *model.RoomMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *message
	f.messages = append(f.messages, &cp)
	return nil
}

func (f *fakeRoomStore) FindMessage(messageID string) (*model.RoomMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.ID == messageID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeRoomStore) FindMessages(roomID string, limit int) ([]model.RoomMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.RoomMessage
	for _, m := range f.messages {
		if m.RoomID == roomID {
			out = append(out, *m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

var errNotFound = errNotFoundType{}

type errNotFoundType struct{}

func (errNotFoundType) Error() string { return "record not found" }

func publicTitles(t *testing.T, store *fakeRoomStore) []string {
	t.Helper()
	rooms, err := store.FindPublicRooms()
	if err != nil {
		t.Fatal(err)
	}
	titles := make([]string, 0, len(rooms))
	for _, r := range rooms {
		titles = append(titles, r.Title)
	}
	return titles
}

func TestEnsureDefaultRoomsSeedsAll(t *testing.T) {
	store := newFakeRoomStore()
	svc := NewChatService(store)

	if err := svc.EnsureDefaultRooms(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []string{"Academics", "General", "Hackathons", "Off-topic", "Placements"}
	got := publicTitles(t, store)
	if len(got) != len(want) {
		t.Fatalf("got %d rooms %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got titles %v, want %v", got, want)
		}
	}
}

func TestEnsureDefaultRoomsIdempotent(t *testing.T) {
	store := newFakeRoomStore()
	svc := NewChatService(store)

	for i := 0; i < 3; i++ {
		if err := svc.EnsureDefaultRooms(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if got := publicTitles(t, store); len(got) != 5 {
		t.Fatalf("repeated seeding must not duplicate rooms, got %v", got)
	}
}

func TestEnsureDefaultRoomsRemovesDuplicatesFirst(t *testing.T) {
	store := newFakeRoomStore()
	svc := NewChatService(store)

	// 预置两个同名 General 房间与一个非默认房间
	for _, id := range []string{"gen-old", "gen-new"} {
		if err := store.CreateRoom(&model.ChatRoom{ID: id, Type: model.RoomTypePublic, Title: "General"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.CreateRoom(&model.ChatRoom{ID: "custom", Type: model.RoomTypePublic, Title: "Chess Club"}); err != nil {
		t.Fatal(err)
	}

	if err := svc.EnsureDefaultRooms(context.Background()); err != nil {
		t.Fatal(err)
	}

	// 最早创建的 General 存活，后创建的重复房间被清理
	if _, err := store.FindByID("gen-old"); err != nil {
		t.Fatal("oldest duplicate should survive cleanup")
	}
	if _, err := store.FindByID("gen-new"); err == nil {
		t.Fatal("newer duplicate should be removed")
	}
	// 非默认房间不受影响
	if _, err := store.FindByID("custom"); err != nil {
		t.Fatal("non-default room must not be touched")
	}
	if got := publicTitles(t, store); len(got) != 6 {
		t.Fatalf("got %v, want 5 defaults plus the custom room", got)
	}
}

func TestGetOrCreateDmRoomStableAcrossOrder(t *testing.T) {
	store := newFakeRoomStore()
	svc := NewChatService(store)

	first, err := svc.GetOrCreateDmRoom("uid-b", "uid-a")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.GetOrCreateDmRoom("uid-a", "uid-b")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Fatalf("same pair must map to one room, got %s and %s", first.ID, second.ID)
	}
	if first.DmKey == nil || *first.DmKey != "uid-a_uid-b" {
		t.Fatalf("unexpected dmKey: %v", first.DmKey)
	}

	if _, err := svc.GetOrCreateDmRoom("uid-a", "uid-a"); err == nil {
		t.Fatal("dm with oneself must be rejected")
	}
}

func TestSendMessageValidation(t *testing.T) {
	config.Conf.Chat.MessageMaxLength = 2000
	store := newFakeRoomStore()
	svc := NewChatService(store)
	ctx := context.Background()

	room, err := svc.GetOrCreateDmRoom("uid-a", "uid-b")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.SendMessage(ctx, room.ID, "uid-a", "Alice", "   "); err == nil {
		t.Fatal("blank message must be rejected")
	}
	if _, err := svc.SendMessage(ctx, room.ID, "uid-a", "Alice", strings.Repeat("x", 2001)); err == nil {
		t.Fatal("oversized message must be rejected")
	}
	if _, err := svc.SendMessage(ctx, room.ID, "uid-c", "Carol", "hi"); err != ErrNotRoomMember {
		t.Fatalf("non-member send: got %v, want ErrNotRoomMember", err)
	}
	if len(store.messages) != 0 {
		t.Fatalf("rejected messages must not be persisted, got %d", len(store.messages))
	}

	msg, err := svc.SendMessage(ctx, room.ID, "uid-a", "Alice", "  hello there  ")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Text != "hello there" {
		t.Fatalf("text should be trimmed, got %q", msg.Text)
	}

	history, err := svc.ListMessages(room.ID, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].ID != msg.ID {
		t.Fatalf("message missing from room history: %+v", history)
	}
}
