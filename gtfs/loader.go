package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
)

var wantedFiles = map[string]bool{
	"routes.txt":     true,
	"trips.txt":      true,
	"stops.txt":      true,
	"stop_times.txt": true,
	"agency.txt":     true,
	"calendar.txt":   true,
}

func (g *Index) loadFromStaticZip(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tmp, err := os.CreateTemp("", "gtfs-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return g.loadFromLocalZip(tmp.Name())
}

// loadFromLocalZip opens a local GTFS zip file and consumes required CSVs.
func (g *Index) loadFromLocalZip(path string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if wantedFiles[strings.ToLower(f.Name)] {
			if err := g.consumeCSV(f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Index) consumeCSV(f *zip.File) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	csvr := csv.NewReader(r)
	rec, err := csvr.ReadAll()
	if err != nil {
		return err
	}
	if len(rec) == 0 {
		return nil
	}
	head := rec[0]
	idx := func(col string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				return i
			}
		}
		return -1
	}
	switch strings.ToLower(f.Name) {
	case "routes.txt":
		rID := idx("route_id")
		rSN := idx("route_short_name")
		rType := idx("route_type")
		for _, row := range rec[1:] {
			if rID >= 0 && rSN >= 0 {
				g.routeShortNames[row[rID]] = row[rSN]
			}
			if rID >= 0 && rType >= 0 {
				if typeInt, err := strconv.Atoi(row[rType]); err == nil {
					g.routeTypes[row[rID]] = typeInt
				}
			}
		}
	case "trips.txt":
		rID := idx("route_id")
		tID := idx("trip_id")
		hs := idx("trip_headsign")
		svc := idx("service_id")
		for _, row := range rec[1:] {
			if tID < 0 {
				continue
			}
			if rID >= 0 {
				g.tripToRoute[row[tID]] = row[rID]
			}
			if hs >= 0 {
				g.tripHeadsign[row[tID]] = row[hs]
			}
			if svc >= 0 {
				g.tripService[row[tID]] = row[svc]
			}
		}
	case "stops.txt":
		sID := idx("stop_id")
		sN := idx("stop_name")
		sLat := idx("stop_lat")
		sLon := idx("stop_lon")
		for _, row := range rec[1:] {
			if sID < 0 {
				continue
			}
			if sN >= 0 {
				g.stopNames[row[sID]] = row[sN]
			}
			if sLat >= 0 && sLon >= 0 {
				lat, _ := strconv.ParseFloat(row[sLat], 64)
				lon, _ := strconv.ParseFloat(row[sLon], 64)
				g.stopCoord[row[sID]] = [2]float64{lon, lat}
			}
		}
	case "stop_times.txt":
		tID := idx("trip_id")
		sID := idx("stop_id")
		sq := idx("stop_sequence")
		arrTime := idx("arrival_time")
		depTime := idx("departure_time")
		if tID < 0 || sID < 0 || sq < 0 {
			return nil
		}
		tmp := map[string][]struct {
			stop    string
			seq     int
			arrTime string
			depTime string
		}{}
		for _, row := range rec[1:] {
			trip := row[tID]
			stop := row[sID]
			seq, _ := strconv.Atoi(row[sq])
			arrT := ""
			if arrTime >= 0 && arrTime < len(row) {
				arrT = row[arrTime]
			}
			depT := ""
			if depTime >= 0 && depTime < len(row) {
				depT = row[depTime]
			}
			tmp[trip] = append(tmp[trip], struct {
				stop    string
				seq     int
				arrTime string
				depTime string
			}{stop, seq, arrT, depT})
		}
		for trip, arr := range tmp {
			sort.Slice(arr, func(i, j int) bool { return arr[i].seq < arr[j].seq })
			g.stopTimeArrival[trip] = make(map[string]string)
			g.stopTimeDeparture[trip] = make(map[string]string)
			seqStops := make([]string, 0, len(arr))
			idxMap := make(map[string]int, len(arr))
			for i, v := range arr {
				seqStops = append(seqStops, v.stop)
				if _, ok := idxMap[v.stop]; !ok {
					idxMap[v.stop] = i
					g.stopTrips[v.stop] = append(g.stopTrips[v.stop], trip)
				}
				if v.arrTime != "" {
					g.stopTimeArrival[trip][v.stop] = v.arrTime
				}
				if v.depTime != "" {
					g.stopTimeDeparture[trip][v.stop] = v.depTime
				}
			}
			g.TripStopSeq[trip] = seqStops
			g.tripStopIdx[trip] = idxMap
		}
	case "agency.txt":
		agID := idx("agency_id")
		agTZ := idx("agency_timezone")
		agName := idx("agency_name")
		if len(rec) > 1 {
			if agID >= 0 && g.agencyID == "" {
				g.agencyID = rec[1][agID]
			}
			if agTZ >= 0 {
				g.agencyTZ = rec[1][agTZ]
			}
			if agName >= 0 {
				g.agencyName = rec[1][agName]
			}
		}
	case "calendar.txt":
		svc := idx("service_id")
		start := idx("start_date")
		end := idx("end_date")
		days := [7]int{idx("sunday"), idx("monday"), idx("tuesday"), idx("wednesday"),
			idx("thursday"), idx("friday"), idx("saturday")}
		if svc < 0 {
			return nil
		}
		for _, row := range rec[1:] {
			var active [7]bool
			for i, col := range days {
				if col >= 0 && col < len(row) {
					active[i] = row[col] == "1"
				}
			}
			g.serviceWeekday[row[svc]] = active
			if start >= 0 && start < len(row) {
				g.serviceStart[row[svc]] = row[start]
			}
			if end >= 0 && end < len(row) {
				g.serviceEnd[row[svc]] = row[end]
			}
		}
	}
	return nil
}
