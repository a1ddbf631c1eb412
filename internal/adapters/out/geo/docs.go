// Package geo resolves addresses and road routes through external HTTP
// services: an OpenRouteService-compatible geocoder and an OSRM-compatible
// router. Routing never fails towards the caller; when the router stays
// unavailable after its retries the resolver returns a straight-line route.
package geo
