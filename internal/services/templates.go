package services

import (
	"fmt"
	"html"
	"strings"
)

// field is one label/value line in an email body
type field struct {
	label string
	value string
}

// renderEmail wraps a message in the shared HTML layout. All text is escaped.
func renderEmail(title, intro string, fields []field, closing string) string {
	var rows strings.Builder
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(&rows, `
            <tr>
                <td class="label">%s</td>
                <td class="value">%s</td>
            </tr>`, html.EscapeString(f.label), html.EscapeString(f.value))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%[1]s</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            background-color: white;
            border-radius: 8px;
            padding: 40px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
        }
        .logo {
            font-size: 24px;
            font-weight: bold;
            color: #1976d2;
            margin-bottom: 20px;
        }
        table { width: 100%%; border-collapse: collapse; margin: 20px 0; }
        td { padding: 8px 0; border-bottom: 1px solid #eee; }
        .label { color: #666; width: 40%%; }
        .value { font-weight: 600; }
        .footer { margin-top: 30px; color: #999; font-size: 13px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo">WorldWide Warehousing</div>
        <h2>%[1]s</h2>
        <p>%[2]s</p>
        <table>%[3]s
        </table>
        <p>%[4]s</p>
        <div class="footer">This is an automated message. Please do not reply directly.</div>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(intro), rows.String(), html.EscapeString(closing))
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
