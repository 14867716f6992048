package report

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/nutrition-ranker/internal/domain"
)

func sampleReport() Report {
	top := []domain.Ranked{
		{Rank: 1, Name: "Grilled Chicken Breast", Score: 43.25, Protein: 31, Fiber: 0, Sodium: 74, MealType: "Dinner"},
		{Rank: 2, Name: "Milk (2%, 1 cup)", Score: 9.5, Protein: 8, Fiber: 0, Sodium: 100, MealType: "Breakfast"},
		{Rank: 3, Name: "Apple", Score: 8.8, Protein: 0.5, Fiber: 4.4, Sodium: 2, MealType: ""},
	}
	best := top[0]
	return Report{
		Source:   "daily_food_nutrition_dataset.csv",
		Loaded:   3,
		Rejected: 1,
		Top:      top,
		Best:     &best,
		Groups: []domain.GroupBest{
			{MealType: "Dinner", Name: "Grilled Chicken Breast", Score: 43.25},
			{MealType: "Breakfast", Name: "Milk (2%, 1 cup)", Score: 9.5},
		},
	}
}

func TestTextPresenter_Present(t *testing.T) {
	var buf bytes.Buffer
	err := NewTextPresenter(&buf).Present(context.Background(), sampleReport())
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Loaded 3 food entries from daily_food_nutrition_dataset.csv\n"), out)
	assert.Contains(t, out, "=== What is the healthiest meal? ===")
	assert.Contains(t, out, " 1. Grilled Chicken Breast")
	assert.Contains(t, out, "Score:  43.25  (Protein: 31.0g, Fiber: 0.0g, Sodium: 74mg)")
	assert.Contains(t, out, " 2. Milk (2%, 1 cup)")
	assert.Contains(t, out, `*** Answer: The single healthiest food item in our dataset is: "Grilled Chicken Breast" (meal type: Dinner) ***`)
	assert.Contains(t, out, "Healthiest item per meal type:")
	assert.Contains(t, out, "  Dinner: Grilled Chicken Breast (score: 43.25)")
	assert.Contains(t, out, "  Breakfast: Milk (2%, 1 cup) (score: 9.50)")

	assert.Less(t, strings.Index(out, "Dinner:"), strings.Index(out, "Breakfast:"), "groups keep rank order")
}

func TestTextPresenter_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := NewTextPresenter(&buf).Present(context.Background(), Report{})
	require.NoError(t, err)
	assert.Equal(t, "No records to rank.\n", buf.String())
}

func TestTextPresenter_NamesPrintedVerbatim(t *testing.T) {
	r := sampleReport()
	best := domain.Ranked{Rank: 1, Name: `Kid's "Power" Bowl`, Score: 12, MealType: "Lunch"}
	r.Best = &best

	var buf bytes.Buffer
	require.NoError(t, NewTextPresenter(&buf).Present(context.Background(), r))
	assert.Contains(t, buf.String(), `food item in our dataset is: "Kid's "Power" Bowl" (meal type: Lunch) ***`)
}

func TestTextPresenter_EmptyWithSource(t *testing.T) {
	var buf bytes.Buffer
	err := NewTextPresenter(&buf).Present(context.Background(), Report{Source: "foods.csv"})
	require.NoError(t, err)
	assert.Equal(t, "Loaded 0 food entries from foods.csv\nNo records to rank.\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestTextPresenter_WriteError(t *testing.T) {
	err := NewTextPresenter(failingWriter{}).Present(context.Background(), sampleReport())
	assert.EqualError(t, err, "disk full")
}

func TestChartPresenter_Render(t *testing.T) {
	p, err := NewChartPresenter("unused.png", ChartOptions{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf, sampleReport()))

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultChartWidth, cfg.Width)
	assert.Equal(t, DefaultChartHeight, cfg.Height)
}

func TestChartPresenter_AllZeroScores(t *testing.T) {
	p, err := NewChartPresenter("unused.png", ChartOptions{Width: 400})
	require.NoError(t, err)

	r := Report{Top: []domain.Ranked{{Rank: 1, Name: "Soda"}, {Rank: 2, Name: "Candy"}}}

	var buf bytes.Buffer
	require.NotPanics(t, func() {
		require.NoError(t, p.Render(&buf, r))
	})

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
}

func TestChartPresenter_Present(t *testing.T) {
	path := filepath.Join(t.TempDir(), "top.png")
	p, err := NewChartPresenter(path, ChartOptions{})
	require.NoError(t, err)

	require.NoError(t, p.Present(context.Background(), sampleReport()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)
}

func TestChartPresenter_EmptyReportWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	p, err := NewChartPresenter(path, ChartOptions{})
	require.NoError(t, err)

	require.NoError(t, p.Present(context.Background(), Report{}))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestNewChartPresenter_BadFont(t *testing.T) {
	_, err := NewChartPresenter("out.png", ChartOptions{FontPath: filepath.Join(t.TempDir(), "missing.ttf")})
	assert.Error(t, err)
}

func TestChartHeight(t *testing.T) {
	assert.Equal(t, DefaultChartHeight, chartHeight(0))
	assert.Equal(t, DefaultChartHeight, chartHeight(10))
	assert.Greater(t, chartHeight(25), DefaultChartHeight)
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Apple", "Apple"},
		{"Exactly twenty-eight chars!!", "Exactly twenty-eight chars!!"},
		{"Whole Wheat Spaghetti with Marinara Sauce", "Whole Wheat Spaghetti wit..."},
		{"Crème brûlée with caramelised sugar", "Crème brûlée with caramel..."},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateLabel(tt.in))
		})
	}
}

func TestMultiPresenter(t *testing.T) {
	var calls []string
	record := func(name string, err error) Presenter {
		return PresenterFunc(func(ctx context.Context, r Report) error {
			calls = append(calls, name)
			return err
		})
	}

	boom := errors.New("boom")
	m := MultiPresenter{record("text", nil), nil, record("chart", boom), record("never", nil)}

	err := m.Present(context.Background(), sampleReport())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"text", "chart"}, calls)
}
