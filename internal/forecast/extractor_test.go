package forecast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, html string) []LocationForecast {
	t.Helper()
	doc, err := ParseDocument([]byte(html))
	require.NoError(t, err)
	return ExtractLocations(doc)
}

func TestExtractLocationsFullBlock(t *testing.T) {
	t.Parallel()

	html := `<html><body>
	<div class="forecast-location">
		<span class="location-name"> Asunción </span>
		<div class="forecast-day">
			<span class="fecha">Lunes 12</span>
			<span class="temp-max"> 34°C </span>
			<span class="temp-min">22°C</span>
			<span class="descripcion">Parcialmente nublado</span>
		</div>
		<div class="forecast-day">
			<span class="date">Martes 13</span>
			<span class="max">31°C</span>
		</div>
	</div>
	</body></html>`

	locations := mustParse(t, html)
	require.Len(t, locations, 1)
	require.Equal(t, "Asunción", locations[0].Name)
	require.Len(t, locations[0].Days, 2)

	first := locations[0].Days[0]
	require.NotNil(t, first.Date)
	require.Equal(t, "Lunes 12", *first.Date)
	require.NotNil(t, first.HighTemp)
	require.Equal(t, "34°C", *first.HighTemp)
	require.NotNil(t, first.LowTemp)
	require.Equal(t, "22°C", *first.LowTemp)
	require.NotNil(t, first.Description)
	require.Equal(t, "Parcialmente nublado", *first.Description)

	second := locations[0].Days[1]
	require.NotNil(t, second.Date)
	require.NotNil(t, second.HighTemp)
	require.Nil(t, second.LowTemp)
	require.Nil(t, second.Description)
}

func TestExtractLocationsEmptyDocument(t *testing.T) {
	t.Parallel()

	locations := mustParse(t, `<html><body><p>mantenimiento</p></body></html>`)
	require.Empty(t, locations)
}

func TestExtractLocationsNamelessBlockDropped(t *testing.T) {
	t.Parallel()

	html := `<html><body>
	<div class="pronostico-ciudad">
		<div class="forecast-day"><span class="fecha">Lunes</span></div>
	</div>
	<div class="pronostico-ciudad">
		<span class="ciudad">Encarnación</span>
	</div>
	</body></html>`

	locations := mustParse(t, html)
	require.Len(t, locations, 1)
	require.Equal(t, "Encarnación", locations[0].Name)
	require.NotNil(t, locations[0].Days)
	require.Empty(t, locations[0].Days)
}

func TestExtractLocationsNameFallbackSelector(t *testing.T) {
	t.Parallel()

	html := `<html><body>
	<div class="forecast-location">
		<h2>  Ciudad del Este  </h2>
		<div class="forecast-day"></div>
	</div>
	</body></html>`

	locations := mustParse(t, html)
	require.Len(t, locations, 1)
	require.Equal(t, "Ciudad del Este", locations[0].Name)
}

func TestExtractLocationsAllFieldsMissingRowKept(t *testing.T) {
	t.Parallel()

	html := `<html><body>
	<div class="forecast-location">
		<span class="location-name">Pilar</span>
		<table><tbody>
		<tr class="dia"><td>sin datos</td></tr>
		</tbody></table>
	</div>
	</body></html>`

	locations := mustParse(t, html)
	require.Len(t, locations, 1)
	require.Len(t, locations[0].Days, 1)
	day := locations[0].Days[0]
	require.Nil(t, day.Date)
	require.Nil(t, day.HighTemp)
	require.Nil(t, day.LowTemp)
	require.Nil(t, day.Description)
}

func TestExtractLocationsBlankFieldIsNull(t *testing.T) {
	t.Parallel()

	html := `<html><body>
	<div class="forecast-location">
		<span class="location-name">Concepción</span>
		<div class="forecast-day"><span class="fecha">   </span></div>
	</div>
	</body></html>`

	locations := mustParse(t, html)
	require.Len(t, locations, 1)
	require.Nil(t, locations[0].Days[0].Date)
}

func TestExtractLocationsPreservesDocumentOrder(t *testing.T) {
	t.Parallel()

	html := `<html><body>
	<div class="forecast-location"><span class="location-name">B</span></div>
	<div class="forecast-location"><span class="location-name">A</span></div>
	<div class="forecast-location"><span class="location-name">C</span></div>
	</body></html>`

	locations := mustParse(t, html)
	require.Len(t, locations, 3)
	require.Equal(t, "B", locations[0].Name)
	require.Equal(t, "A", locations[1].Name)
	require.Equal(t, "C", locations[2].Name)
}
