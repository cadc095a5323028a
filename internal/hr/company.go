package hr

import (
	"context"
	"database/sql"

	"github.com/jamesprial/hr-mcp-gateway/internal/pool"
)

// ListLimit caps client and project listings.
const ListLimit = 50

// Clients lists clients by name.
func (d *Directory) Clients(ctx context.Context, conn pool.Conn, activeOnly bool) ([]Client, error) {
	q := `SELECT id, client_name, company_name, contact_person, email_id, phone, status FROM client`
	if activeOnly {
		q += ` WHERE status = 1`
	}
	q += ` ORDER BY client_name LIMIT ?`

	rows, err := conn.QueryContext(ctx, q, ListLimit)
	if err != nil {
		return nil, queryError("Clients", err)
	}
	defer rows.Close()

	out := []Client{}
	for rows.Next() {
		var (
			c                              Client
			company, contact, email, phone sql.NullString
			status                         sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.Name, &company, &contact, &email, &phone, &status); err != nil {
			return nil, queryError("Clients", err)
		}
		c.Company = company.String
		c.ContactPerson = contact.String
		c.Email = email.String
		c.Phone = phone.String
		c.Active = status.Int64 == 1
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("Clients", err)
	}
	return out, nil
}

// Projects lists projects, newest first, with their client.
func (d *Directory) Projects(ctx context.Context, conn pool.Conn, activeOnly bool) ([]Project, error) {
	q := `
		SELECT p.id, p.title, p.status, p.date, c.client_name, c.email_id
		FROM project p
		LEFT JOIN client c ON p.client_id = c.id`
	if activeOnly {
		q += ` WHERE p.status = 1`
	}
	q += ` ORDER BY p.date DESC LIMIT ?`

	rows, err := conn.QueryContext(ctx, q, ListLimit)
	if err != nil {
		return nil, queryError("Projects", err)
	}
	defer rows.Close()

	out := []Project{}
	for rows.Next() {
		var (
			p                     Project
			status                sql.NullInt64
			started, client, mail sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Title, &status, &started, &client, &mail); err != nil {
			return nil, queryError("Projects", err)
		}
		p.Active = status.Int64 == 1
		p.Started = started.String
		p.Client = client.String
		p.ClientEmail = mail.String
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("Projects", err)
	}
	return out, nil
}

// Holidays lists holidays from today through the next upcomingDays days.
func (d *Directory) Holidays(ctx context.Context, conn pool.Conn, upcomingDays int) ([]Holiday, error) {
	today := d.today()
	from := today.Format(dateLayout)
	to := today.AddDate(0, 0, upcomingDays).Format(dateLayout)

	rows, err := conn.QueryContext(ctx, `
		SELECT holiday_date, occasion
		FROM holidays
		WHERE holiday_date >= ? AND holiday_date <= ?
		ORDER BY holiday_date ASC`, from, to)
	if err != nil {
		return nil, queryError("Holidays", err)
	}
	defer rows.Close()

	out := []Holiday{}
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.Date, &h.Occasion); err != nil {
			return nil, queryError("Holidays", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("Holidays", err)
	}
	return out, nil
}
