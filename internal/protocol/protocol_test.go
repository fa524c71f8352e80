package protocol

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestCategoryRows(t *testing.T) {
	bus := []Category{
		CategoryReset, CategoryAttention, CategorySync, CategoryStart, CategoryStop,
		CategoryAddressBit, CategoryCommandBit, CategoryRegisterBit, CategoryDataBit,
		CategoryStopToStart, CategoryServiceRequest,
	}
	for _, c := range bus {
		if c.Row() != RowBus {
			t.Fatalf("%s: row=%s want bus", c, c.Row())
		}
	}
	for _, c := range []Category{CategoryCommand, CategoryAddress, CategoryRegister, CategoryData} {
		if c.Row() != RowTransactions {
			t.Fatalf("%s: row=%s want transactions", c, c.Row())
		}
	}
	if CategoryWarning.Row() != RowWarnings {
		t.Fatalf("warning row=%s", CategoryWarning.Row())
	}
	if len(Categories()) != 16 {
		t.Fatalf("expected 16 categories, got %d", len(Categories()))
	}
}

func TestCategoryTextRoundTrip(t *testing.T) {
	for _, c := range Categories() {
		b, err := c.MarshalText()
		if err != nil {
			t.Fatalf("marshal %d: %v", c, err)
		}
		var back Category
		if err := back.UnmarshalText(b); err != nil || back != c {
			t.Fatalf("round trip %s: got %s err=%v", c, back, err)
		}
		if c.Description() == "" {
			t.Fatalf("%s has no description", c)
		}
	}
	if _, err := ParseCategory("bogus"); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if _, err := Category(200).MarshalText(); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory for out-of-range value, got %v", err)
	}
}

func TestParseRow(t *testing.T) {
	r, err := ParseRow("transactions")
	if err != nil || r != RowTransactions {
		t.Fatalf("ParseRow=%s,%v", r, err)
	}
	if _, err := ParseRow("nope"); !errors.Is(err, ErrUnknownRow) {
		t.Fatalf("expected ErrUnknownRow, got %v", err)
	}
}

func TestAnnotationJSONUsesNames(t *testing.T) {
	a := Annotation{Category: CategorySync, Start: 10, End: 75, Labels: []string{"Sync", "SS"}}
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"category":"sync"`) {
		t.Fatalf("category not encoded by name: %s", b)
	}
	if a.Long() != "Sync" || a.Short() != "SS" || a.Row() != RowBus {
		t.Fatalf("unexpected label helpers: long=%q short=%q row=%s", a.Long(), a.Short(), a.Row())
	}
	if (Annotation{}).Long() != "" || (Annotation{}).Short() != "" {
		t.Fatalf("empty annotation must have empty labels")
	}
}

func TestCommandKindMapping(t *testing.T) {
	cases := map[uint16]string{0: "Flush", 1: "Unknown(1)", 2: "Listen", 3: "Talk"}
	for v, want := range cases {
		k := CommandKindOf(v)
		if k.String() != want {
			t.Fatalf("command %d: got %s want %s", v, k, want)
		}
		if k.Labels()[0] != want {
			t.Fatalf("command %d: long label %q want %q", v, k.Labels()[0], want)
		}
	}
	if CommandKindOf(6) != CommandListen {
		t.Fatalf("only the low two bits select the command")
	}

	var k CommandKind
	if err := k.UnmarshalText([]byte("Unknown(1)")); err != nil || k != CommandUnknown {
		t.Fatalf("unmarshal Unknown(1): got %v err=%v", k, err)
	}
	if err := k.UnmarshalText([]byte("Poll")); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestCollector(t *testing.T) {
	var c Collector
	var sink Sink = &c
	sink.Put(Annotation{Category: CategoryAttention})
	sink.Put(Annotation{Category: CategorySync})
	sink.Put(Annotation{Category: CategoryAttention})
	c.PutTransaction(Transaction{Address: 3, Command: CommandTalk})

	if got := c.Filter(CategoryAttention); len(got) != 2 {
		t.Fatalf("expected 2 attention annotations, got %d", len(got))
	}
	cats := c.Categories()
	if len(cats) != 3 || cats[1] != CategorySync {
		t.Fatalf("unexpected categories %v", cats)
	}
	if len(c.Transactions) != 1 || c.Transactions[0].HasData() {
		t.Fatalf("unexpected transactions %+v", c.Transactions)
	}

	var seen []Category
	SinkFunc(func(a Annotation) { seen = append(seen, a.Category) }).Put(Annotation{Category: CategoryData})
	if len(seen) != 1 || seen[0] != CategoryData {
		t.Fatalf("SinkFunc did not forward: %v", seen)
	}
}

func TestTransactionString(t *testing.T) {
	data := uint16(0x00ff)
	tx := Transaction{Address: 2, Command: CommandListen, Register: 3, Data: &data, ServiceRequest: true}
	got := tx.String()
	if got != "Listen addr=0x2 reg=0x3 data=0x00ff srq" {
		t.Fatalf("unexpected string %q", got)
	}
}
