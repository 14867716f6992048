package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dvloznov/nutrition-ranker/internal/logger"
)

const header = "Food_Item,Category,Calories (kcal),Protein (g),Carbohydrates (g),Fat (g),Fiber (g),Sugars (g),Sodium (mg),Cholesterol (mg),Meal_Type,Water_Intake (ml)"

func testContext() context.Context {
	return logger.WithContext(context.Background(), logger.NewWithWriter(io.Discard))
}

func TestLoad(t *testing.T) {
	src := strings.Join([]string{
		header,
		"Apple,Fruits,52,0.3,14,0.2,2.4,10.4,1,0,Snack,0",
		"broken,line",
		"Milk (2%, 1 cup),Dairy,122,8.1,11.7,4.8,0,12.3,100,20,Breakfast,250",
		"",
		"Salmon,Meat,208,20,0,13,0,0,59,55,Dinner,0",
	}, "\n") + "\n"

	ds, err := Load(testContext(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if ds.Empty {
		t.Error("Load() marked a non-empty source as empty")
	}
	if ds.Loaded() != 3 {
		t.Fatalf("Load() loaded %d records, want 3", ds.Loaded())
	}
	if ds.Lines != 5 {
		t.Errorf("Load() saw %d data lines, want 5", ds.Lines)
	}
	if ds.Rejected != 2 {
		t.Errorf("Load() rejected %d lines, want 2", ds.Rejected)
	}

	wantNames := []string{"Apple", "Milk (2%, 1 cup)", "Salmon"}
	for i, want := range wantNames {
		if ds.Records[i].Name != want {
			t.Errorf("record %d = %q, want %q", i, ds.Records[i].Name, want)
		}
	}

	if len(ds.Rejections) != 2 || ds.Rejections[0].Line != 3 || ds.Rejections[1].Line != 5 {
		t.Errorf("Load() rejections = %+v, want lines 3 and 5", ds.Rejections)
	}
}

func TestLoad_HeaderIsNeverParsed(t *testing.T) {
	// A header that would parse as a record must still be skipped.
	src := "Header,Cat,1,2,3,4,5,6,7,8,Meal,9\nApple,Fruits,52,0.3,14,0.2,2.4,10.4,1,0,Snack,0\n"

	ds, err := Load(testContext(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if ds.Loaded() != 1 || ds.Records[0].Name != "Apple" {
		t.Errorf("Load() records = %+v, want only Apple", ds.Records)
	}
}

func TestLoad_HeaderOnly(t *testing.T) {
	ds, err := Load(testContext(), strings.NewReader(header+"\n"))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if ds.Empty {
		t.Error("header-only source must not be marked empty")
	}
	if ds.Loaded() != 0 || ds.Rejected != 0 {
		t.Errorf("Load() = %d loaded, %d rejected, want 0 and 0", ds.Loaded(), ds.Rejected)
	}
}

func TestLoad_EmptySource(t *testing.T) {
	ds, err := Load(testContext(), strings.NewReader(""))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if !ds.Empty {
		t.Error("Load() did not mark an empty source")
	}
	if ds.Loaded() != 0 {
		t.Errorf("Load() loaded %d records from an empty source", ds.Loaded())
	}
}

func TestLoad_CRLF(t *testing.T) {
	src := header + "\r\nEgg,Protein,78,6.3,0.6,5.3,0,0.6,62,186,Breakfast,0\r\n"

	ds, err := Load(testContext(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if ds.Loaded() != 1 || ds.Records[0].WaterIntake != 0 || ds.Records[0].MealType != "Breakfast" {
		t.Errorf("Load() records = %+v", ds.Records)
	}
}

func TestLoad_RejectionDetailsCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString(header + "\n")
	for i := 0; i < MaxRejectionDetails+25; i++ {
		b.WriteString("bad\n")
	}

	ds, err := Load(testContext(), strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if ds.Rejected != MaxRejectionDetails+25 {
		t.Errorf("Load() rejected %d, want %d", ds.Rejected, MaxRejectionDetails+25)
	}
	if len(ds.Rejections) != MaxRejectionDetails {
		t.Errorf("Load() kept %d rejection details, want %d", len(ds.Rejections), MaxRejectionDetails)
	}
}

type failingReader struct {
	data string
	read bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		return copy(p, r.data), nil
	}
	return 0, errors.New("connection reset")
}

func TestLoad_ReadErrorIsFatal(t *testing.T) {
	_, err := Load(testContext(), &failingReader{data: header + "\nApple,Fruits,52,0.3,14,0.2,2.4,10.4,1,0,Snack,0\n"})
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("Load() error = %v, want wrapped read error", err)
	}
}

func TestLoad_HeaderReadError(t *testing.T) {
	_, err := Load(testContext(), &failingReader{})
	if err == nil {
		t.Error("Load() expected error when the header cannot be read")
	}
}

func TestLoad_OversizedLineIsRejected(t *testing.T) {
	long := "Huge," + strings.Repeat("x", 2*MaxLineBytes) + ",52,0.3,14,0.2,2.4,10.4,1,0,Snack,0"
	src := strings.Join([]string{
		header,
		"Apple,Fruits,52,0.3,14,0.2,2.4,10.4,1,0,Snack,0",
		long,
		"Salmon,Meat,208,20,0,13,0,0,59,55,Dinner,0",
	}, "\n") + "\n"

	ds, err := Load(testContext(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if ds.Loaded() != 2 || ds.Records[0].Name != "Apple" || ds.Records[1].Name != "Salmon" {
		t.Errorf("Load() records = %d, want Apple and Salmon", ds.Loaded())
	}
	if ds.Rejected != 1 || len(ds.Rejections) != 1 || ds.Rejections[0].Line != 3 {
		t.Fatalf("Load() rejections = %+v, want line 3 only", ds.Rejections)
	}
	if !strings.Contains(ds.Rejections[0].Reason, ErrLineTooLong.Error()) {
		t.Errorf("rejection reason = %q, want %q", ds.Rejections[0].Reason, ErrLineTooLong)
	}
}

func TestLoad_LineAtLimitIsParsed(t *testing.T) {
	tail := ",Fruits,52,0.3,14,0.2,2.4,10.4,1,0,Snack,0"
	name := strings.Repeat("n", MaxLineBytes-len(tail))
	src := header + "\n" + name + tail + "\n"

	ds, err := Load(testContext(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if ds.Loaded() != 1 || ds.Rejected != 0 {
		t.Errorf("Load() = %d loaded, %d rejected, want 1 and 0", ds.Loaded(), ds.Rejected)
	}
}

func TestLoad_LastLineWithoutNewline(t *testing.T) {
	src := header + "\nApple,Fruits,52,0.3,14,0.2,2.4,10.4,1,0,Snack,0"

	ds, err := Load(testContext(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if ds.Loaded() != 1 || ds.Lines != 1 {
		t.Errorf("Load() = %d loaded from %d lines, want 1 and 1", ds.Loaded(), ds.Lines)
	}
}
