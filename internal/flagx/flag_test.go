package flagx

import (
	"reflect"
	"testing"
)

func TestFilterArgs_SeparateValue(t *testing.T) {
	args := []string{"-m", "local", "-x", "ignored", "-d", "users.db"}
	got := FilterArgs(args, []string{"-m", "-d"})
	want := []string{"-m", "local", "-d", "users.db"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFilterArgs_EqualsForm(t *testing.T) {
	args := []string{"--config=conf.json", "--other=zzz"}
	got := FilterArgs(args, []string{"--config"})
	want := []string{"--config=conf.json"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFilterArgs_FlagWithoutValue(t *testing.T) {
	args := []string{"-v", "-m", "remote"}
	got := FilterArgs(args, []string{"-v"})
	want := []string{"-v"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFilterArgs_Empty(t *testing.T) {
	got := FilterArgs(nil, []string{"-a"})
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
