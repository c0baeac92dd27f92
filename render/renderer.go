package render

import (
	"fmt"
	"html"
	"strings"

	"dealdesk/database"
	"dealdesk/pipeline"
)

// RenderResultsTableHTML builds the dashboard results table for one run.
// Returned markup is a fragment the frontend drops into its table element.
func RenderResultsTableHTML(props []database.RunProperty) string {
	var sb strings.Builder

	sb.WriteString(`
    <thead>
        <tr>
            <th class="col-address">Address</th>
            <th class="col-city">City</th>
            <th class="col-state">State</th>
            <th class="col-zip">Zip</th>
            <th class="col-sqft">Sqft</th>
            <th class="col-condition">Condition</th>
            <th class="col-arv">ARV</th>
            <th class="col-offer">Offer Price</th>
            <th class="col-potential">High Potential</th>
            <th class="col-loi">LOI</th>
        </tr>
    </thead>
    <tbody>
`)

	for _, p := range props {
		rowClass := ""
		if p.HighPotential {
			rowClass = ` class="high-potential"`
		}
		sb.WriteString("        <tr" + rowClass + ">\n")
		writeCell(&sb, p.Address)
		writeCell(&sb, p.City)
		writeCell(&sb, p.State)
		writeCell(&sb, p.Zip)
		writeCell(&sb, numText(p.LivingSqft, "%.0f"))
		writeCell(&sb, p.ConditionEstimate)
		writeCell(&sb, numText(p.ARV, "$%.2f"))
		writeCell(&sb, numText(p.OfferPrice, "$%.2f"))
		if p.HighPotential {
			writeCell(&sb, "Yes")
		} else {
			writeCell(&sb, "No")
		}
		if p.LOIFile != "" && p.LOIFile != pipeline.DocumentError {
			sb.WriteString(fmt.Sprintf("            <td><a href=\"/api/loi/download/%s\">Download</a></td>\n",
				html.EscapeString(p.LOIFile)))
		} else {
			writeCell(&sb, p.LOIFile)
		}
		sb.WriteString("        </tr>\n")
	}

	sb.WriteString("    </tbody>\n")
	return sb.String()
}

func writeCell(sb *strings.Builder, text string) {
	sb.WriteString("            <td>" + html.EscapeString(text) + "</td>\n")
}

func numText(v *float64, format string) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf(format, *v)
}
