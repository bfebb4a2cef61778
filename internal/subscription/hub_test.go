package subscription

import (
	"testing"
	"time"
)

func TestHubDeliversToTopicSubscribers(t *testing.T) {
	hub := NewHub()
	subA := hub.Subscribe("room:1")
	subB := hub.Subscribe("room:1")
	other := hub.Subscribe("room:2")
	defer subA.Cancel()
	defer subB.Cancel()
	defer other.Cancel()

	hub.Publish("room:1", "hello")

	for _, sub := range []*Subscription{subA, subB} {
		select {
		case ev := <-sub.C:
			if ev.Topic != "room:1" || ev.Payload != "hello" {
				t.Fatalf("unexpected event: %+v", ev)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}

	select {
	case ev := <-other.C:
		t.Fatalf("subscriber of another topic received %+v", ev)
	default:
	}
}

func TestHubCancelStopsDelivery(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("room:1")

	sub.Cancel()
	if got := hub.SubscriberCount("room:1"); got != 0 {
		t.Fatalf("subscriber count after cancel = %d, want 0", got)
	}

	// 取消后发布不会 panic，通道已关闭
	hub.Publish("room:1", "late")
	if _, ok := <-sub.C; ok {
		t.Fatal("channel should be closed after cancel")
	}

	// 重复取消是安全的
	sub.Cancel()
}

func TestHubSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("room:1")
	defer sub.Cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// 缓冲为 16，超出部分被丢弃而不是阻塞
		for i := 0; i < 100; i++ {
			hub.Publish("room:1", i)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
}
