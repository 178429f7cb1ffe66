package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

func doRequest(method, rawURL, userID string, payload []byte, out io.Writer) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, rawURL, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	_, err = io.Copy(out, resp.Body)
	return err
}

func runHealth(api string, out io.Writer) error {
	return doRequest(http.MethodGet, api+"/api/health", "", nil, out)
}

func runNearby(api string, lat, lng, maxDistance float64, page, limit int, out io.Writer) error {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lng", fmt.Sprintf("%f", lng))
	if maxDistance > 0 {
		q.Set("maxDistance", fmt.Sprintf("%f", maxDistance))
	}
	if page > 0 {
		q.Set("page", fmt.Sprintf("%d", page))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	return doRequest(http.MethodGet, api+"/api/moments/nearby?"+q.Encode(), "", nil, out)
}

func runClusters(api, userID string, lat, lng, maxDistance, gridSize float64, out io.Writer) error {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lng", fmt.Sprintf("%f", lng))
	if maxDistance > 0 {
		q.Set("maxDistance", fmt.Sprintf("%f", maxDistance))
	}
	if gridSize > 0 {
		q.Set("gridSize", fmt.Sprintf("%f", gridSize))
	}
	return doRequest(http.MethodGet, api+"/api/users/clusters?"+q.Encode(), userID, nil, out)
}

func runUpdateLocation(api, userID string, lat, lng float64, out io.Writer) error {
	payload, _ := json.Marshal(map[string]float64{"latitude": lat, "longitude": lng})
	return doRequest(http.MethodPut, api+"/api/users/location", userID, payload, out)
}
