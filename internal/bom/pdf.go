package bom

import (
	"fmt"
	"os"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// WritePDF renders the report as a paginated document: a title and header
// block followed by the same tabular content as the CSV, closed by a totals
// row.
func (r *Report) WritePDF(path string) error {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "3D Printing Bill of Materials", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	headerLines := []string{
		"Generated on: " + r.GeneratedAt.Format("2006-01-02 15:04:05"),
		fmt.Sprintf("Total Parts: %d", len(r.Items)),
		fmt.Sprintf("Total Weight: %.4f g", r.TotalWeightG),
		fmt.Sprintf("Total Cost: $%.2f", r.TotalCostEGP),
	}
	for _, line := range headerLines {
		m.AddRow(6, text.NewCol(12, line, props.Text{Size: 10}))
	}

	headerStyle := props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center}
	m.AddRow(8,
		text.NewCol(2, "Part Name", headerStyle),
		text.NewCol(1, "Object Wt (g)", headerStyle),
		text.NewCol(1, "Supports Wt (g)", headerStyle),
		text.NewCol(1, "Total Wt (g)", headerStyle),
		text.NewCol(1, "Price (EGP)", headerStyle),
		text.NewCol(2, "Dimensions (mm)", headerStyle),
		text.NewCol(1, "Print Time", headerStyle),
		text.NewCol(3, "Print Settings", headerStyle),
	)

	cellStyle := props.Text{Size: 8}
	numStyle := props.Text{Size: 8, Align: align.Center}
	for _, item := range r.Items {
		m.AddRow(7,
			text.NewCol(2, item.PartName, cellStyle),
			text.NewCol(1, fmt.Sprintf("%.4f", item.ObjectWeightG), numStyle),
			text.NewCol(1, fmt.Sprintf("%.4f", item.SupportsWeightG), numStyle),
			text.NewCol(1, fmt.Sprintf("%.4f", item.TotalWeightG), numStyle),
			text.NewCol(1, fmt.Sprintf("$%.2f", item.PriceEGP), numStyle),
			text.NewCol(2, item.DimensionsMM, numStyle),
			text.NewCol(1, item.PrintTime, numStyle),
			text.NewCol(3, item.PrintSettings, cellStyle),
		)
	}

	totalStyle := props.Text{Style: fontstyle.Bold, Size: 8}
	m.AddRow(8,
		text.NewCol(2, fmt.Sprintf("TOTAL (%d parts)", len(r.Items)), totalStyle),
		text.NewCol(1, "", totalStyle),
		text.NewCol(1, "", totalStyle),
		text.NewCol(1, fmt.Sprintf("%.4f", r.TotalWeightG), props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center}),
		text.NewCol(1, fmt.Sprintf("$%.2f", r.TotalCostEGP), props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center}),
	)

	doc, err := m.Generate()
	if err != nil {
		return fmt.Errorf("failed to render PDF document: %w", err)
	}

	if err := os.WriteFile(path, doc.GetBytes(), 0644); err != nil {
		return fmt.Errorf("failed to write PDF file %s: %w", path, err)
	}

	return nil
}
