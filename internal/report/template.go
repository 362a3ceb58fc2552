// internal/report/template.go
package report

import "html/template"

var dashboardTemplate = template.Must(template.New("experiment-report").Parse(dashboardTemplateHTML))

const dashboardTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.2/dist/chart.umd.min.js"></script>
  <style>
    :root {
      --primary: #334155;
      --secondary: #64748B;
      --accent: #3B82F6;
      --light: #F1F5F9;
      --background: #FFFFFF;
      --text: #0F172A;
      --warning: #F59E0B;
      --border: #E2E8F0;
    }
    body {
      margin: 0;
      background-color: var(--light);
      color: var(--text);
      font-family: system-ui, -apple-system, "Segoe UI", sans-serif;
    }
    header {
      background-color: var(--primary);
      color: var(--light);
      padding: 1rem 2rem;
    }
    header h1 { margin: 0; font-size: 1.4rem; }
    header .meta { color: var(--secondary); font-size: 0.85rem; margin-top: 0.25rem; }
    main {
      max-width: 1100px;
      margin: 0 auto;
      padding: 1.5rem;
    }
    .card {
      background-color: var(--background);
      border: 1px solid var(--border);
      border-radius: 8px;
      padding: 1rem 1.5rem;
      margin-bottom: 1.5rem;
    }
    .card h2 { margin: 0 0 0.75rem; font-size: 1.1rem; color: var(--primary); }
    .chart-wrap { position: relative; height: 320px; }
    .notes { color: var(--warning); font-size: 0.9rem; }
    .notes li { margin-bottom: 0.25rem; }
  </style>
</head>
<body>
  <header>
    <h1>{{ .Title }}</h1>
    <div class="meta" id="report-meta"></div>
  </header>
  <main id="charts"></main>
  <script>
    const payload = {{ .PayloadJSON }};
    const palette = ['#3B82F6', '#10B981', '#F59E0B', '#EF4444', '#8B5CF6', '#14B8A6'];

    document.getElementById('report-meta').textContent =
      payload.experiment + ' · generated ' + payload.generatedAt + ' · ' +
      (payload.totalRecords - payload.errorRecords) + ' records (' + payload.errorRecords + ' errored)';

    const main = document.getElementById('charts');
    payload.charts.forEach(function(spec) {
      const card = document.createElement('div');
      card.className = 'card';

      const heading = document.createElement('h2');
      heading.textContent = spec.title;
      card.appendChild(heading);

      const wrap = document.createElement('div');
      wrap.className = 'chart-wrap';
      const canvas = document.createElement('canvas');
      canvas.id = spec.id;
      wrap.appendChild(canvas);
      card.appendChild(wrap);
      main.appendChild(card);

      new Chart(canvas, {
        type: 'bar',
        data: {
          labels: spec.labels,
          datasets: spec.series.map(function(s, i) {
            return {
              label: s.label,
              data: s.values,
              backgroundColor: palette[i % palette.length]
            };
          })
        },
        options: {
          responsive: true,
          maintainAspectRatio: false,
          animation: false,
          scales: {
            y: {
              beginAtZero: true,
              max: spec.yMax || undefined,
              title: { display: true, text: spec.yLabel, color: '#64748B' }
            }
          },
          plugins: {
            legend: { display: spec.series.length > 1 }
          }
        }
      });
    });

    if (payload.notes && payload.notes.length) {
      const card = document.createElement('div');
      card.className = 'card';
      const heading = document.createElement('h2');
      heading.textContent = 'Notes';
      card.appendChild(heading);
      const list = document.createElement('ul');
      list.className = 'notes';
      payload.notes.forEach(function(note) {
        const item = document.createElement('li');
        item.textContent = note;
        list.appendChild(item);
      });
      card.appendChild(list);
      main.appendChild(card);
    }
  </script>
</body>
</html>
`
