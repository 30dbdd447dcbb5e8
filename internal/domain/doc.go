// Package domain turns raw Korean public-data rows into chart-ready series for
// the Gyeongnam tourism dashboard.
//
// # Data Sources
//
// Rows come from three data.go.kr services and from region datasets that
// administrators place on disk:
//
//	VilageFcstInfoService_2.0/getUltraSrtFcst   ultra-short-term forecast (KMA)
//	DataLabService/locgoRegnVisitrDDList         daily visitors per district
//	TatsCnctrRateService/tatsCnctrRatedList      predicted attraction concentration
//	{region}/관광소비/성연령별.csv                 consumption by age and gender
//	{region}/관광소비/외국인.csv                   foreign consumption by country
//
// Upstream field names (signguNm, touDivNm, touNum, fcstDate, fcstTime,
// category, fcstValue, cnctrRate, baseYmd, tAtsNm) are an external contract and
// are matched exactly.
//
// # Forecast Conventions
//
// Dates are YYYYMMDD and times are HHMM on the provider's local calendar
// (Asia/Seoul). Forecast categories used by the dashboard:
//
//	T1H  temperature (°C)
//	RN1  one-hour precipitation (mm), "강수없음" means none
//	PTY  precipitation type code 0-7
//	SKY  sky condition code 1, 3, 4
//	REH  relative humidity (%)
//
// Any other category (WSD, UUU, VVV, VEC, LGT) passes through as a plain
// numeric series.
//
// # Numeric Parsing
//
// Upstream numbers arrive as strings and are parsed leniently: the longest
// numeric prefix wins, so "1.0mm" is 1 and "20대" is 20. A failed count parse
// yields 0 and a failed rate parse yields NaN. Neither rejects the row; each
// normalized record carries a list of [FieldIssue] values describing what was
// defaulted so callers can log or drop it.
//
// # Ordering
//
// Grouped series keep first-seen order. Concentration-rate series are the one
// exception and sort ascending by their YYYYMMDD key, which is chronological
// for fixed-width dates.
package domain
