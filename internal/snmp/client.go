package snmp

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client reads MIB columns from a Walker into Tables.
type Client struct {
	walker      Walker
	limiter     *rate.Limiter
	vendorTypes map[string]string
	logger      *zap.Logger
}

// NewClient creates a client over w. A positive cfg.RequestsPerSecond
// throttles every GET and walk issued to the device.
func NewClient(w Walker, cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	names := make(map[string]string, len(DefaultVendorTypes)+len(cfg.VendorTypes))
	for k, v := range DefaultVendorTypes {
		names[k] = v
	}
	for _, vt := range cfg.VendorTypes {
		names[strings.TrimPrefix(strings.TrimSpace(vt.OID), ".")] = vt.Name
	}

	c := &Client{
		walker:      w,
		vendorTypes: names,
		logger:      logger,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return ctx.Err()
	}
	return c.limiter.Wait(ctx)
}

// Columns walks each column and merges the results into one table keyed by
// row index.
func (c *Client) Columns(ctx context.Context, cols ...Column) (*Table, error) {
	t := NewTable()
	for _, col := range cols {
		if err := c.walkInto(ctx, t, col); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// OptionalColumns is Columns for auxiliary data: a column the device fails
// to walk is logged and left empty.
func (c *Client) OptionalColumns(ctx context.Context, cols ...Column) *Table {
	t := NewTable()
	for _, col := range cols {
		if err := c.walkInto(ctx, t, col); err != nil {
			c.logger.Debug("optional column unavailable",
				zap.String("column", col.String()),
				zap.Error(err),
			)
		}
	}
	return t
}

func (c *Client) walkInto(ctx context.Context, t *Table, col Column) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	pdus, err := c.walker.BulkWalkAll(col.OID)
	if err != nil {
		return fmt.Errorf("walk %s: %w", col, err)
	}
	for _, pdu := range pdus {
		idx, ok := indexSuffix(pdu.Name, col.OID)
		if !ok {
			continue
		}
		t.Set(idx, col.Name, c.render(col, pdu))
	}
	c.logger.Debug("column walked",
		zap.String("column", col.String()),
		zap.Int("rows", len(pdus)),
	)
	return nil
}

// Get reads scalar columns in one request. The returned row is keyed by
// column name; objects the device lacks carry ErrNoSuchObject.
func (c *Client) Get(ctx context.Context, cols ...Column) (Row, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	oids := make([]string, len(cols))
	byOID := make(map[string]Column, len(cols))
	for i, col := range cols {
		oids[i] = col.OID
		byOID[normalizeOID(col.OID)] = col
	}

	pkt, err := c.walker.Get(oids)
	if err != nil {
		return nil, fmt.Errorf("SNMP GET: %w", err)
	}

	row := make(Row, len(cols))
	for _, pdu := range pkt.Variables {
		col, ok := byOID[normalizeOID(pdu.Name)]
		if !ok {
			continue
		}
		row[col.Name] = c.render(col, pdu)
	}
	return row, nil
}

func (c *Client) render(col Column, pdu gosnmp.SnmpPDU) Value {
	v := renderPDU(col, pdu)
	if col.Kind == KindVendorType && v.Valid() && v.raw != "" {
		v.raw = translateOID(c.vendorTypes, v.raw)
	}
	return v
}
