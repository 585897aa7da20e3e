package config

import (
	"reflect"
	"testing"
)

func TestIsAdminEmail(t *testing.T) {
	AppConfig.AdminEmails = "ops@taskhive.io, Root@TaskHive.io"
	defer func() { AppConfig.AdminEmails = "" }()

	tests := []struct {
		email string
		want  bool
	}{
		{"ops@taskhive.io", true},
		{"root@taskhive.io", true},
		{"  OPS@taskhive.io ", true},
		{"someone@taskhive.io", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsAdminEmail(tt.email); got != tt.want {
			t.Errorf("IsAdminEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestKafkaBrokers(t *testing.T) {
	AppConfig.EventsKafkaBrokers = "kafka-1:9092, ,kafka-2:9092"
	defer func() { AppConfig.EventsKafkaBrokers = "" }()

	want := []string{"kafka-1:9092", "kafka-2:9092"}
	if got := KafkaBrokers(); !reflect.DeepEqual(got, want) {
		t.Errorf("KafkaBrokers() = %v, want %v", got, want)
	}

	AppConfig.EventsKafkaBrokers = ""
	if got := KafkaBrokers(); got != nil {
		t.Errorf("expected nil broker list, got %v", got)
	}
}
