package webhook

import (
	"testing"
	"time"
)

func TestDeliveryDeduper(t *testing.T) {
	d := newDeliveryDeduper(time.Hour)

	if !d.markIfNew("a") {
		t.Error("first sighting of a should be new")
	}
	if d.markIfNew("a") {
		t.Error("second sighting of a should be a duplicate")
	}
	if !d.markIfNew("b") {
		t.Error("different id should be new")
	}
}

func TestDeliveryDeduperExpiry(t *testing.T) {
	d := newDeliveryDeduper(10 * time.Millisecond)

	if !d.markIfNew("a") {
		t.Fatal("first sighting should be new")
	}
	time.Sleep(20 * time.Millisecond)
	if !d.markIfNew("a") {
		t.Error("expired id should count as new again")
	}
}

func TestDeliveryDeduperDefaultTTL(t *testing.T) {
	d := newDeliveryDeduper(0)
	if d.ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", d.ttl)
	}
}
