/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: templates.go
Description: HTML template for the benchmark dashboard.
*/

package reporting

// dashboardTemplate is the HTML template for the benchmark dashboard
const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - Bayes Engine Benchmark</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
            color: #333;
        }
        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }
        .card {
            background: rgba(255, 255, 255, 0.95);
            border-radius: 16px;
            padding: 24px;
            margin-bottom: 24px;
            box-shadow: 0 8px 32px rgba(0, 0, 0, 0.1);
        }
        .header { text-align: center; }
        .header h1 { color: #4a5568; font-size: 2.2rem; margin-bottom: 8px; }
        .header p { color: #718096; }
        .stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 16px; }
        .stat { text-align: center; }
        .stat .value { font-size: 1.8rem; font-weight: 700; color: #667eea; }
        .stat .label { color: #718096; font-size: 0.9rem; }
        .charts { display: grid; grid-template-columns: repeat(auto-fit, minmax(450px, 1fr)); gap: 24px; }
        table { width: 100%; border-collapse: collapse; }
        th, td { padding: 8px 12px; border-bottom: 1px solid #e2e8f0; text-align: left; }
        th { color: #4a5568; }
        .ok { color: #38a169; font-weight: 600; }
        .bad { color: #e53e3e; font-weight: 600; }
    </style>
</head>
<body>
    <div class="container">
        <div class="card header">
            <h1>{{.Title}}</h1>
            <p>Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}} &middot; version {{.Version}} &middot; run {{.Report.ID}}</p>
        </div>

        <div class="card stats">
            <div class="stat"><div class="value">{{.Report.TotalQueries}}</div><div class="label">Queries</div></div>
            <div class="stat"><div class="value">{{printf "%.2fx" .Report.Speedup}}</div><div class="label">Speedup</div></div>
            <div class="stat"><div class="value">{{.Report.BaselineTotal}}</div><div class="label">{{.Report.Baseline}} total</div></div>
            <div class="stat"><div class="value">{{.Report.CandidateTotal}}</div><div class="label">{{.Report.Candidate}} total</div></div>
            <div class="stat">
                <div class="value">{{if .Report.Consistent}}<span class="ok">consistent</span>{{else}}<span class="bad">inconsistent</span>{{end}}</div>
                <div class="label">{{.Report.Conclusion}}</div>
            </div>
        </div>

        <div class="charts">
            <div class="card"><h3>{{.Charts.TimingChart.Title}}</h3><canvas id="timingChart"></canvas></div>
            <div class="card"><h3>{{.Charts.SpeedupChart.Title}}</h3><canvas id="speedupChart"></canvas></div>
        </div>

        <div class="card">
            <h3>Cases</h3>
            <table>
                <thead>
                    <tr><th>Suite</th><th>Query</th><th>{{.Report.Baseline}}</th><th>{{.Report.Candidate}}</th><th>Most probable</th><th>Max difference</th><th>Consistent</th></tr>
                </thead>
                <tbody>
                {{range .Rows}}
                    <tr>
                        <td>{{.Suite}}</td>
                        <td>{{.Query}}</td>
                        <td>{{.BaselineTime}}</td>
                        <td>{{.CandidateTime}}</td>
                        <td>{{.MostProbable}}</td>
                        <td>{{printf "%.2e" .MaxDifference}}</td>
                        <td>{{if .Consistent}}<span class="ok">yes</span>{{else}}<span class="bad">no</span>{{end}}</td>
                    </tr>
                {{end}}
                </tbody>
            </table>
        </div>
    </div>

    <script>
        const timing = {{chart .Charts.TimingChart}};
        const speedup = {{chart .Charts.SpeedupChart}};
        new Chart(document.getElementById('timingChart'), timing);
        new Chart(document.getElementById('speedupChart'), speedup);
    </script>
</body>
</html>
`
