package nav

import "github.com/jcmexdev/bizops-dashboard/internal/domain"

var (
	admin    = domain.RoleAdmin
	supplier = domain.RoleSupplier
	customer = domain.RoleCustomer
)

func roles(r ...domain.Role) []domain.Role { return r }

// DefaultMenu is the sidebar of the dashboard. Each call returns a fresh
// copy.
func DefaultMenu() []Menu {
	return []Menu{
		{
			Heading: "Customer Dashboard",
			Roles:   roles(customer),
			Items: []Item{
				Link("Profil Perusahaan", "/account", "i-lucide-building", customer),
				Link("Buat Pesanan", "/orders/new-create", "i-lucide-package", customer),
				Link("Pesanan Saya", "/orders", "i-lucide-package", customer),
				Link("Perumahan Saya", "/orders", "i-lucide-package", customer),
				Link("Faktur Saya", "/faktur", "i-lucide-package", customer),
			},
		},
		{
			Heading: "Smarti",
			Roles:   roles(customer),
			Items: []Item{
				Link("Pasang Smarti", "/account", "i-lucide-building", customer),
			},
		},
		{
			Heading: "Supplier Dashboard",
			Roles:   roles(supplier),
			Items: []Item{
				Link("Profil Perusahaan", "/account", "i-lucide-building", supplier),
				Link("Buat Pesanan", "/orders/new-create", "i-lucide-package", customer),
				Link("Pesanan Masuk", "/orders/incoming", "i-lucide-package-check", supplier),
				Link("Pesanan Saya", "/orders/me", "i-lucide-package-check", supplier),
				Link("Produk Saya", "/product/my", "i-lucide-box", supplier),
			},
		},
		{
			Heading: "General",
			Roles:   roles(admin),
			Items: []Item{
				Link("Dashboard", "/", "i-lucide-layout-dashboard", admin, supplier, customer),
			},
		},
		{
			Roles: roles(admin, supplier),
			Items: []Item{
				Group("Master", "i-lucide-lock-keyhole-open", roles(admin),
					Link("Item", "/product/item", "i-lucide-box", admin),
					Link("Rakitan", "/product/rakitan", "i-lucide-cube", admin),
					Link("Bundling", "/product/bundling", "i-lucide-package-plus", admin),
					Link("Tax", "/tax", "i-lucide-percent", admin),
				),
			},
		},
		{
			Roles: roles(admin),
			Items: []Item{
				Group("Pembelian", "i-lucide-lock-keyhole-open", roles(admin),
					Link("Pesanan Pembelian", "/purchase-orders", "i-lucide-file-plus", admin),
					Link("Penerimaan Barang", "/goods-receipt", "i-lucide-truck", admin),
					Link("Transaksi Pembelian", "/purchase-transactions", "i-lucide-file-text", admin),
				),
			},
		},
		{
			Heading: "Penjualan",
			Roles:   roles(admin),
			Items: []Item{
				Link("Pesanan Jual", "/orders", "i-lucide-shopping-cart", admin),
				Link("Pengiriman", "/delivery", "i-lucide-send", admin),
				Link("Transaksi Penjualan", "/sales-transactions", "i-lucide-file-text", admin),
			},
		},
		{
			Heading: "Sinkronisasi",
			Roles:   roles(admin),
			Items: []Item{
				Link("Update Harga", "/price-update", "i-lucide-refresh-ccw", admin),
			},
		},
		{
			Heading: "Rekonsiliasi Data",
			Roles:   roles(admin),
			Items: []Item{
				Link("Accurate", "/reconcile/accutare", "i-lucide-database", admin),
				Link("Payment Gateway", "/reconcile/payment", "i-lucide-credit-card", admin),
				Link("Bank", "/reconcile/bank", "i-lucide-banknote", admin),
			},
		},
		{
			Heading: "Master",
			Roles:   roles(admin, supplier),
			Items: []Item{
				Link("SSO Sireng", "/customers", "i-lucide-users", admin),
				Link("Vendor", "/suppliers", "i-lucide-truck", admin),
			},
		},
		{
			Heading: "Reports",
			Roles:   roles(admin, supplier),
			Items: []Item{
				Link("Sales Report", "/reports/sales", "i-lucide-trending-up", admin, supplier),
				Link("Customer Report", "/reports/customers", "i-lucide-users-2", admin),
				Link("Inventory Report", "/reports/inventory", "i-lucide-bar-chart-3", admin, supplier),
				Link("Order History", "/reports/orders", "i-lucide-history", customer),
			},
		},
		{
			Heading: "Management",
			Roles:   roles(admin),
			Items: []Item{
				Link("User Management", "/management/users", "i-lucide-users-cog", admin),
				Link("System Settings", "/management/settings", "i-lucide-settings", admin),
			},
		},
	}
}

// DefaultBottomMenu is the footer of the sidebar.
func DefaultBottomMenu() []Item {
	return []Item{
		Link("Bantuan & Tiket", "/help", "i-lucide-life-buoy", admin, supplier, customer),
		Link("Panduan & Dokumen", "/docs", "i-lucide-book-open", admin, supplier, customer),
		Link("Keamanan & Login", "/account/security", "i-lucide-lock", customer),
	}
}
