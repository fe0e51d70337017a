// Package leads renders a campaign's leads as a CSV export for organizers.
package leads
