package events_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestEvents(t *testing.T) {
	t.Log("Given the need to broadcast events to subscribers.")
	{
		evts := events.New()

		a := evts.Acquire("a")
		b := evts.Acquire("b")

		if again := evts.Acquire("a"); again != a {
			t.Fatalf("\t%s\tShould get back the same channel for the same id.", failed)
		}
		t.Logf("\t%s\tShould get back the same channel for the same id.", success)

		if n := evts.Send("state: appendBlock"); n != 2 {
			t.Fatalf("\t%s\tShould deliver to both subscribers, got %d.", failed, n)
		}
		t.Logf("\t%s\tShould deliver to both subscribers.", success)

		if msg := <-a; msg != "state: appendBlock" {
			t.Fatalf("\t%s\tShould receive the message, got %q.", failed, msg)
		}
		<-b
		t.Logf("\t%s\tShould receive the message.", success)

		if err := evts.Release("a"); err != nil {
			t.Fatalf("\t%s\tShould be able to release a subscriber: %v", failed, err)
		}
		if _, open := <-a; open {
			t.Fatalf("\t%s\tShould close the released channel.", failed)
		}
		t.Logf("\t%s\tShould close the released channel.", success)

		if err := evts.Release("a"); err == nil {
			t.Fatalf("\t%s\tShould not release an unknown subscriber.", failed)
		}
		t.Logf("\t%s\tShould not release an unknown subscriber.", success)

		evts.Shutdown()
		if _, open := <-b; open || evts.Subscribers() != 0 {
			t.Fatalf("\t%s\tShould close every channel on shutdown.", failed)
		}
		t.Logf("\t%s\tShould close every channel on shutdown.", success)
	}
}
