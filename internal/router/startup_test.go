package router

import (
	"testing"

	"github.com/danmuck/i4/internal/config"
	"github.com/danmuck/i4/internal/protocol"
)

func TestStartupRequestLayout(t *testing.T) {
	cfg := config.Default()
	cfg.Services = []string{"tell", "who"}

	p, err := StartupRequest(cfg)
	if err != nil {
		t.Fatalf("startup request: %v", err)
	}
	want := `({"startup-req-3",5,"*i4",0,"*dalet",0,0,0,0,1234,1235,1235,` +
		`"i4 0.1","i4","i4 0.1","I3 client","mudlib development","admin@localhost",` +
		`(["tell":1,"who":1]),0})`
	if p.Text() != want {
		t.Fatalf("startup mismatch:\n got=%s\nwant=%s", p.Text(), want)
	}
	if p.Len() != 20 {
		t.Fatalf("expected 20 fields, got %d", p.Len())
	}
}

func TestStartupRequestCarriesStoredIDs(t *testing.T) {
	cfg := config.Default()
	cfg.Password = 424242
	cfg.MudlistID = 17
	cfg.ChanlistID = 9

	p, err := StartupRequest(cfg)
	if err != nil {
		t.Fatalf("startup request: %v", err)
	}
	for idx, want := range map[int]protocol.Int{6: 424242, 7: 17, 8: 9} {
		got, _ := p.Field(idx)
		if got != want {
			t.Fatalf("field %d: expected %d, got %#v", idx, want, got)
		}
	}
}

func TestErrorPacket(t *testing.T) {
	bad := protocol.List{protocol.String("tell"), protocol.Int(5)}
	p, err := ErrorPacket("*i4", "Remote", "", ErrCodeUnknownType, "no such type", bad)
	if err != nil {
		t.Fatalf("error packet: %v", err)
	}
	want := `({"error",5,"*i4",0,"Remote",0,"unk-type","no such type",({"tell",5})})`
	if p.Text() != want {
		t.Fatalf("error packet mismatch:\n got=%s\nwant=%s", p.Text(), want)
	}

	p, err = ErrorPacket("*i4", "Remote", "bob", ErrCodeBadPacket, "bad", nil)
	if err != nil {
		t.Fatalf("error packet: %v", err)
	}
	if last, _ := p.Field(8); last != protocol.Int(0) {
		t.Fatalf("expected 0 bad_packet, got %#v", last)
	}
}
