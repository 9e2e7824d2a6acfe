package component

import "testing"

func TestStatus_String(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   string
	}{
		{
			name:   "unloaded",
			status: Unloaded,
			want:   "Unloaded",
		},
		{
			name:   "loaded",
			status: Loaded,
			want:   "Loaded",
		},
		{
			name:   "single blocking flag",
			status: NameClash,
			want:   "NameClash",
		},
		{
			name:   "two flags in declaration order",
			status: MissingDependency | IncompatibleVersion,
			want:   "MissingDependency | IncompatibleVersion",
		},
		{
			name:   "declaration order regardless of numeric spread",
			status: MissingInterface | IncompatibleHostVersion,
			want:   "IncompatibleHostVersion | MissingInterface",
		},
		{
			name:   "three flags",
			status: NameClash | Disabled | UnableToOpen,
			want:   "NameClash | Disabled | UnableToOpen",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatus_Has(t *testing.T) {
	s := MissingDependency | IncompatibleVersion

	if !s.Has(MissingDependency) {
		t.Error("Has(MissingDependency) = false, want true")
	}
	if !s.Has(IncompatibleVersion) {
		t.Error("Has(IncompatibleVersion) = false, want true")
	}
	if !s.Has(MissingDependency | IncompatibleVersion) {
		t.Error("Has(both) = false, want true")
	}
	if s.Has(Disabled) {
		t.Error("Has(Disabled) = true, want false")
	}
	if s.Has(MissingDependency | Disabled) {
		t.Error("Has(MissingDependency|Disabled) = true, want false when one flag absent")
	}
	if !Unloaded.Has(Unloaded) {
		t.Error("zero status should contain the empty set")
	}
}

func TestStatus_Accumulation(t *testing.T) {
	var s Status
	s |= MissingDependency
	s |= IncompatibleVersion
	s |= MissingDependency // setting twice is a no-op

	if s != MissingDependency|IncompatibleVersion {
		t.Errorf("accumulated status = %v, want MissingDependency | IncompatibleVersion", s)
	}
}
